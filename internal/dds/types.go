// Package dds defines the data types exchanged with the opaque
// DirectX/DDS codec named in spec.md §1. The codec itself (decode,
// compute-shader execution, mipmap generation) is out of scope; this
// package is the shared vocabulary internal/gpu and internal/texture
// use to talk about it.
package dds

// Format enumerates the DDS pixel formats the complex-material
// classifier cares about (spec.md §6 "Accepted DDS formats"). Values
// outside this set still decode, they are simply never CM candidates.
type Format uint16

const (
	FormatUnknown Format = iota
	FormatBC1
	FormatBC2
	FormatBC3
	FormatBC7
	// FormatUncompressedRGBA covers every uncompressed Rn[Gn[Bn[An]]]
	// layout with at least an alpha channel (spec.md §6).
	FormatUncompressedRGBA
	FormatUncompressedRGB
)

// AlphaMode mirrors DDS_ALPHA_MODE; spec.md §4.4.1 step 1 rejects
// Opaque alpha mode immediately.
type AlphaMode uint8

const (
	AlphaModeUnknown AlphaMode = iota
	AlphaModeStraight
	AlphaModePremultiplied
	AlphaModeOpaque
	AlphaModeCustom
)

// Metadata is the header-only information the GPU service can read
// without decoding pixel data (spec.md §4.3 "load_dds_metadata").
type Metadata struct {
	Width, Height int
	MipCount      int
	Format        Format
	Alpha         AlphaMode
}

// Image is a fully decoded scratch image (spec.md's "ScratchImage").
// Pixels is row-major RGBA8, regardless of the source's on-disk
// compression — the opaque codec is assumed to have already decoded it
// before PGPatcher's code ever sees an Image value.
type Image struct {
	Metadata
	Pixels []byte
}

// HasMeaningfulAlpha reports whether Format is one of the accepted
// formats for complex-material classification (spec.md §6).
func (f Format) HasMeaningfulAlpha() bool {
	switch f {
	case FormatBC2, FormatBC3, FormatBC7, FormatUncompressedRGBA:
		return true
	default:
		return false
	}
}
