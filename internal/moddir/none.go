package moddir

// NoneBackend is the third mode from spec.md §4.2: every file belongs
// to a single anonymous mod at priority 0. It never claims ownership of
// any particular path (no file-walk is performed); Directory.ModForPath
// resolves every path to the anonymous mod because it is the only one.
type NoneBackend struct {
	AnonymousName string
}

const DefaultAnonymousModName = "unmanaged"

func (b *NoneBackend) Load() ([]*Mod, map[string]string, error) {
	name := b.AnonymousName
	if name == "" {
		name = DefaultAnonymousModName
	}
	m := NewMod(name, true, 0)
	return []*Mod{m}, map[string]string{}, nil
}
