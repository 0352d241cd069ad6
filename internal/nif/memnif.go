package nif

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/modpatch/pgpatcher/internal/core"
	"github.com/modpatch/pgpatcher/internal/pathutil"
)

// memMagic tags the in-memory reference codec's wire format. Real NIF
// files obviously don't start with this; MemNIF only needs to round
// trip within this repo's own tests and fixtures.
const memMagic = "MNIF"

// MemNIF is the in-memory reference implementation of NIF described in
// types.go. Its binary layout is deliberately simple — a little-endian
// scratch-buffer reader/writer in the style of
// WoozyMasta-texheaders' encoder/decoder — because the real NIF codec
// is an opaque external service per spec.md §1; this stand-in exists
// only so the patch engine has something concrete to load, mutate, and
// save in tests.
type MemNIF struct {
	shapes []*Shape
}

func NewMemNIF(shapes ...*Shape) *MemNIF {
	return &MemNIF{shapes: shapes}
}

func (m *MemNIF) Shapes() []*Shape { return m.shapes }

// ToBytes serializes the mesh, rejecting any non-ASCII texture-slot
// string (spec.md §3: "non-ASCII characters in texture slots are a hard
// error and cause the owning mesh to be rejected"; §9 design note 4).
func (m *MemNIF) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(memMagic)

	if err := writeU32(&buf, uint32(len(m.shapes))); err != nil {
		return nil, err
	}

	for _, s := range m.shapes {
		if err := writeShape(&buf, s); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeShape(buf *bytes.Buffer, s *Shape) error {
	if err := writeString(buf, s.Name); err != nil {
		return err
	}
	if err := writeU32(buf, uint32(s.BlockType)); err != nil {
		return err
	}
	if err := writeU32(buf, uint32(s.Shader.Type)); err != nil {
		return err
	}
	if err := writeU32(buf, uint32(s.Shader.Flags)); err != nil {
		return err
	}
	if err := writeU32(buf, uint32(s.OldIndex3D)); err != nil {
		return err
	}
	if err := writeU32(buf, uint32(s.NewIndex3D)); err != nil {
		return err
	}
	for _, slot := range s.Shader.Slots {
		if slot != "" {
			if !pathutil.IsASCII(slot) {
				return fmt.Errorf("%w: shape %q slot %q", core.ErrNonASCIIPath, s.Name, slot)
			}
		}
		if err := writeString(buf, slot); err != nil {
			return err
		}
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := writeU32(buf, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func writeU32(buf *bytes.Buffer, v uint32) error {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	_, err := buf.Write(tmp[:])
	return err
}

// MemLoader implements Loader for MemNIF's wire format.
type MemLoader struct{}

func (MemLoader) Load(raw []byte) (NIF, error) {
	r := bytes.NewReader(raw)

	magic := make([]byte, len(memMagic))
	if _, err := r.Read(magic); err != nil || string(magic) != memMagic {
		return nil, fmt.Errorf("%w: bad magic", core.ErrCodecError)
	}

	count, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCodecError, err)
	}

	shapes := make([]*Shape, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := readShape(r)
		if err != nil {
			return nil, fmt.Errorf("%w: shape %d: %v", core.ErrCodecError, i, err)
		}
		shapes = append(shapes, s)
	}

	return &MemNIF{shapes: shapes}, nil
}

func readShape(r *bytes.Reader) (*Shape, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	blockType, err := readU32(r)
	if err != nil {
		return nil, err
	}
	shaderType, err := readU32(r)
	if err != nil {
		return nil, err
	}
	flags, err := readU32(r)
	if err != nil {
		return nil, err
	}
	oldIdx, err := readU32(r)
	if err != nil {
		return nil, err
	}
	newIdx, err := readU32(r)
	if err != nil {
		return nil, err
	}

	s := &Shape{
		Name:       name,
		BlockType:  BlockType(blockType),
		OldIndex3D: int(oldIdx),
		NewIndex3D: int(newIdx),
		Shader: ShaderProperty{
			Type:  ShaderType(shaderType),
			Flags: ShaderFlag(flags),
		},
	}
	for i := 0; i < int(SlotCount); i++ {
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		if v != "" && !pathutil.IsASCII(v) {
			return nil, fmt.Errorf("%w: shape %q slot %d", core.ErrNonASCIIPath, name, i)
		}
		s.Shader.Slots[i] = v
	}
	return s, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := r.Read(tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}
