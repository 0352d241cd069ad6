package gpu

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/modpatch/pgpatcher/internal/dds"
)

type fakeBackend struct {
	metaCalls      int32
	failMeta       bool
	failShaderInit bool
}

func (b *fakeBackend) LoadDDS(path string) (*dds.Image, error) {
	return &dds.Image{Metadata: dds.Metadata{Width: 4, Height: 4}, Pixels: make([]byte, 64)}, nil
}

func (b *fakeBackend) LoadDDSMetadata(path string) (*dds.Metadata, error) {
	atomic.AddInt32(&b.metaCalls, 1)
	if b.failMeta {
		return nil, errors.New("boom")
	}
	return &dds.Metadata{Width: 4, Height: 8, Format: dds.FormatBC3}, nil
}

func (b *fakeBackend) CountChannelPopulations(img *dds.Image) ([4]uint32, error) {
	return [4]uint32{1, 2, 0, 3}, nil
}

func (b *fakeBackend) ApplyShader(in *dds.Image, outFormat dds.Format, outW, outH int, shader *ComputeShader, params map[string]float32) (*dds.Image, error) {
	return &dds.Image{Metadata: dds.Metadata{Width: outW, Height: outH, Format: outFormat}}, nil
}

func (b *fakeBackend) InitShaders() (map[string]*ComputeShader, error) {
	if b.failShaderInit {
		return nil, errors.New("shader compile failure")
	}
	return map[string]*ComputeShader{"CountAlphaValues": {Name: "CountAlphaValues"}}, nil
}

func TestDevice_MetadataCacheIsReadThrough(t *testing.T) {
	b := &fakeBackend{}
	d := NewDevice(b)

	if _, ok := d.LoadDDSMetadata("textures/test_m.dds"); !ok {
		t.Fatal("expected metadata load to succeed")
	}
	if _, ok := d.LoadDDSMetadata("textures/test_m.dds"); !ok {
		t.Fatal("expected second metadata load to succeed from cache")
	}

	if got := atomic.LoadInt32(&b.metaCalls); got != 1 {
		t.Fatalf("expected backend hit once due to caching, got %d", got)
	}
}

func TestDevice_PerImageFailureDoesNotPanic(t *testing.T) {
	b := &fakeBackend{failMeta: true}
	d := NewDevice(b)

	if _, ok := d.LoadDDSMetadata("textures/missing.dds"); ok {
		t.Fatal("expected failure to surface as ok=false, not panic")
	}
}

func TestDevice_InitShadersFailureIsCritical(t *testing.T) {
	b := &fakeBackend{failShaderInit: true}
	d := NewDevice(b)

	if err := d.InitShaders(); err == nil {
		t.Fatal("expected shader init failure to return an error")
	}
}
