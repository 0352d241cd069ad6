package plugin

import (
	"encoding/json"
	"fmt"
	"os"
)

// FormIDCache is the on-disk shape of txstFormIDs.json (spec.md §6):
// `{cache_key -> form_id}`.
type FormIDCache map[string]uint32

// LoadFormIDCache reads txstFormIDs.json from path, returning an empty
// cache (not an error) if the file does not exist yet.
func LoadFormIDCache(path string) (FormIDCache, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return FormIDCache{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plugin: read form ID cache: %w", err)
	}

	var cache FormIDCache
	if err := json.Unmarshal(b, &cache); err != nil {
		return nil, fmt.Errorf("plugin: parse form ID cache: %w", err)
	}
	return cache, nil
}

// SaveFormIDCache persists the allocator's current cache_key -> form_id
// map to path.
func SaveFormIDCache(path string, cache FormIDCache) error {
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("plugin: marshal form ID cache: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("plugin: write form ID cache: %w", err)
	}
	return nil
}
