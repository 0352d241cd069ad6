package diagnostics

import (
	"encoding/json"
	"os"
	"sync"
)

// node is one entry of the hierarchical trace (ParallaxGen_DIAG.json).
// Children are keyed by scope segment, mirroring the stack built by
// core.PrefixGuard.Push/Pop, so the trace tree follows the same nesting
// a log line's prefix would show.
type node struct {
	Events   []string         `json:"events,omitempty"`
	Children map[string]*node `json:"children,omitempty"`
}

// Trace accumulates a hierarchical record of per-mesh/per-texture
// decisions when diagnostics are enabled (SPEC_FULL.md's diagnostics
// JSON supplement). Disabled by default: Record is a no-op unless
// NewTrace was given enabled=true, so the normal run pays no cost.
type Trace struct {
	enabled bool
	mu      sync.Mutex
	root    *node
}

func NewTrace(enabled bool) *Trace {
	return &Trace{enabled: enabled, root: &node{Children: make(map[string]*node)}}
}

func (t *Trace) Enabled() bool { return t.enabled }

// Record appends one event line under the given scope path (e.g.
// {"meshes/armor.nif", "shape[2]"}).
func (t *Trace) Record(scope []string, event string) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root
	for _, seg := range scope {
		child, ok := n.Children[seg]
		if !ok {
			child = &node{Children: make(map[string]*node)}
			n.Children[seg] = child
		}
		n = child
	}
	n.Events = append(n.Events, event)
}

// Write serializes the trace to destPath (ParallaxGen_DIAG.json). A
// no-op returning nil when the trace is disabled.
func (t *Trace) Write(destPath string) error {
	if !t.enabled {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := json.MarshalIndent(t.root, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, b, 0o644)
}
