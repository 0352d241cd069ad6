package moddir

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modpatch/pgpatcher/internal/core"
	"github.com/modpatch/pgpatcher/internal/pathutil"
)

// MO2Config locates the pieces of a Mod Organizer 2 instance needed to
// resolve mod ownership (spec.md §4.2).
type MO2Config struct {
	// InstanceINIPath points at the instance's ModOrganizer.ini.
	InstanceINIPath string
	// Profile selects which profile's modlist.txt to read; empty means
	// the ini's selected_profile value.
	Profile string
	// BaseDir substitutes for the literal %BASE_DIR% token in ini values.
	BaseDir string
	// OutputDir is checked against every mod directory to fail fast on
	// overlay recursion (spec.md §4.2).
	OutputDir string
}

type MO2Backend struct {
	Cfg MO2Config
}

// mappedSubfolders are the subtrees walked under each enabled mod's
// folder, plus root-level .bsa archives, per spec.md §4.2.
var mappedSubfolders = []string{"textures", "meshes"}

func (b *MO2Backend) Load() ([]*Mod, map[string]string, error) {
	ini, err := parseINI(b.Cfg.InstanceINIPath)
	if err != nil {
		return nil, nil, fmt.Errorf("mo2: parse instance ini: %w", err)
	}

	instanceDir := filepath.Dir(b.Cfg.InstanceINIPath)

	profilesDir := resolveINIPath(ini, "Settings", "profiles_directory", b.Cfg.BaseDir)
	if profilesDir == "" {
		profilesDir = filepath.Join(instanceDir, "profiles")
	}
	modsDir := resolveINIPath(ini, "Settings", "mod_directory", b.Cfg.BaseDir)
	if modsDir == "" {
		modsDir = filepath.Join(instanceDir, "mods")
	}

	profile := b.Cfg.Profile
	if profile == "" {
		profile = ini["general"]["selected_profile"]
	}
	if profile == "" {
		profile = "Default"
	}

	if b.Cfg.OutputDir != "" {
		if samePath(b.Cfg.OutputDir, modsDir) {
			return nil, nil, core.ErrOutputEqualsData
		}
	}

	modlistPath := filepath.Join(profilesDir, profile, "modlist.txt")
	lines, err := readLines(modlistPath)
	if err != nil {
		return nil, nil, fmt.Errorf("mo2: read modlist.txt: %w", err)
	}

	// MO2 writes modlist.txt highest priority first (first line =
	// highest priority), so the lines are walked bottom-up to get
	// ascending priority order.
	var enabledNames []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		switch line[0] {
		case '+':
			enabledNames = append(enabledNames, line[1:])
		case '-', '*':
			continue
		case '#':
			continue
		default:
			continue
		}
	}

	mods := make([]*Mod, 0, len(enabledNames))
	ownership := make(map[string]string)

	for priority, name := range enabledNames {
		if strings.HasSuffix(name, "_separator") {
			continue
		}
		m := NewMod(name, true, priority)
		mods = append(mods, m)

		modRoot := filepath.Join(modsDir, name)
		if b.Cfg.OutputDir != "" && samePath(b.Cfg.OutputDir, modRoot) {
			return nil, nil, core.ErrOutputEqualsData
		}
	}

	// Claim files highest priority first, so that with first writer wins
	// the higher-priority mod owns a file several mods contain.
	for i := len(mods) - 1; i >= 0; i-- {
		modRoot := filepath.Join(modsDir, mods[i].Name)
		claimTree(modRoot, mappedSubfolders, mods[i].Name, ownership)
		claimRootBSAs(modRoot, mods[i].Name, ownership)
	}

	return mods, ownership, nil
}

// claimTree walks each mapped subfolder under modRoot, registering
// ownership for every file found (first writer wins; Load claims mods
// highest priority first, so the higher-priority mod keeps ownership of
// files a lower-priority mod also contains, matching spec.md §4.2).
func claimTree(modRoot string, subfolders []string, modName string, ownership map[string]string) {
	for _, sub := range subfolders {
		root := filepath.Join(modRoot, sub)
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info == nil || info.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(modRoot, path)
			if relErr != nil {
				return nil
			}
			key := pathutil.Canonicalize(rel)
			if _, exists := ownership[key]; !exists {
				ownership[key] = modName
			}
			return nil
		})
	}
}

func claimRootBSAs(modRoot, modName string, ownership map[string]string) {
	entries, err := os.ReadDir(modRoot)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".bsa") {
			key := pathutil.Canonicalize(e.Name())
			if _, exists := ownership[key]; !exists {
				ownership[key] = modName
			}
		}
	}
}

func samePath(a, b string) bool {
	pa, errA := filepath.Abs(a)
	pb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return strings.EqualFold(filepath.Clean(pa), filepath.Clean(pb))
}

// parseINI is a minimal [section] key=value reader sufficient for
// ModOrganizer.ini. No ecosystem INI library appears anywhere in the
// retrieval pack, and the format MO2 emits has no nesting, arrays, or
// quoting beyond the @ByteArray(...) wrapper handled separately in
// resolveINIPath — a hand-rolled scanner is the stdlib-justified choice
// here (see DESIGN.md).
func parseINI(path string) (map[string]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sections := map[string]map[string]string{"": {}}
	current := ""

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.ToLower(strings.Trim(line, "[]"))
			if sections[current] == nil {
				sections[current] = map[string]string{}
			}
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		sections[current][key] = val
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// resolveINIPath decodes an MO2 ini value that may be wrapped in
// @ByteArray(...) and substitutes the literal %BASE_DIR% token, per
// spec.md §4.2's MO2 parse rules.
func resolveINIPath(ini map[string]map[string]string, section, key, baseDir string) string {
	sec, ok := ini[strings.ToLower(section)]
	if !ok {
		return ""
	}
	v, ok := sec[strings.ToLower(key)]
	if !ok {
		return ""
	}
	if strings.HasPrefix(v, "@ByteArray(") && strings.HasSuffix(v, ")") {
		v = strings.TrimSuffix(strings.TrimPrefix(v, "@ByteArray("), ")")
	}
	if baseDir != "" {
		v = strings.ReplaceAll(v, "%BASE_DIR%", baseDir)
	}
	return v
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
