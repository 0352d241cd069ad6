package plugin

import (
	"fmt"

	"github.com/modpatch/pgpatcher/internal/nif"
)

// UnwiredBackend is the Backend cmd/pgpatcher links by default. spec.md
// §4.7 treats the plugin-editing library as opaque by contract; this
// type is the seam a host embeds a real binding behind. Initialize,
// PopulateObjects and every call that would write a record return an
// error; FindAltTexRecords and TXSTSlots return empty results, and
// SavePlugin succeeds with no files.
type UnwiredBackend struct{}

func (UnwiredBackend) Initialize(gameType, exePath, language string, loadOrder []string) error {
	return fmt.Errorf("plugin: no backend wired for Initialize")
}

func (UnwiredBackend) PopulateObjects() error {
	return fmt.Errorf("plugin: no backend wired; link a real plugin-editing library before running")
}

func (UnwiredBackend) FindAltTexRecords(modelPath string, index3D int) []AltTexRecord {
	return nil
}

func (UnwiredBackend) TXSTSlots(txstHandle string) nif.TextureSet {
	return nif.TextureSet{}
}

func (UnwiredBackend) CreateTXST(edid string, slots nif.TextureSet) (string, error) {
	return "", fmt.Errorf("plugin: no backend wired for CreateTXST(%s)", edid)
}

func (UnwiredBackend) SetAltTexTXST(altTexHandle, txstHandle string) error {
	return fmt.Errorf("plugin: no backend wired for SetAltTexTXST")
}

func (UnwiredBackend) RewireModel(modelRecHandle, newModelPath string) error {
	return fmt.Errorf("plugin: no backend wired for RewireModel")
}

func (UnwiredBackend) SetIndex3D(nifPath string, oldIndex3D, newIndex3D int, shapeName string) error {
	return fmt.Errorf("plugin: no backend wired for SetIndex3D")
}

// SavePlugin succeeds with no output files. FindAltTexRecords never
// returns a record, so no TXST is created through this backend and
// nothing is pending to persist.
func (UnwiredBackend) SavePlugin(outputDir string, esmify bool) ([]string, error) {
	return nil, nil
}
