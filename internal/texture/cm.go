package texture

import (
	"github.com/modpatch/pgpatcher/internal/dds"
	"github.com/modpatch/pgpatcher/internal/gpu"
)

// cmResult is the outcome of spec.md §4.4.1's complex-material test.
type cmResult struct {
	isCM       bool
	attributes Attribute
}

// classifyComplexMaterial runs the five-step complex-material test from
// spec.md §4.4.1 against a texture already believed (by vote or suffix)
// to be an EnvironmentMask. It never returns an error: every failure mode
// (missing metadata, unreadable image, unsupported format) degrades to
// "not CM", matching spec.md §7's "GPU dispatch error... per-image
// failures during run degrade gracefully".
func classifyComplexMaterial(dev *gpu.Device, canonicalPath string) cmResult {
	meta, ok := dev.LoadDDSMetadata(canonicalPath)
	if !ok {
		return cmResult{}
	}
	if meta.Alpha == dds.AlphaModeOpaque {
		return cmResult{}
	}
	if !meta.Format.HasMeaningfulAlpha() {
		return cmResult{}
	}

	img, ok := dev.LoadDDS(canonicalPath)
	if !ok {
		return cmResult{}
	}

	pops, ok := dev.CountChannelPopulations(img)
	if !ok {
		return cmResult{}
	}

	pixelCount := uint32(meta.Width * meta.Height)
	alphaPop := pops[3]
	if pixelCount > 0 && alphaPop*2 > pixelCount {
		// Alpha is densely populated: it's being used as opacity, not
		// as a height channel (spec.md §4.4.1 step 4).
		return cmResult{}
	}

	var attrs Attribute
	if pops[0] > 0 {
		attrs |= AttrCMEnvMask
	}
	if pops[1] > 0 {
		attrs |= AttrCMGlossiness
	}
	if pops[2] > 0 {
		attrs |= AttrCMMetalness
	}
	return cmResult{isCM: true, attributes: attrs}
}
