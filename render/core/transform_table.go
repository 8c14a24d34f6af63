package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MatrixBytes is the size of one column-major float32 4x4 entry on the GPU.
const MatrixBytes = 64

// TransformTable is a dense arena of local-to-world matrices indexed by
// ObjectHandle. Entries that were never written hold the identity.
type TransformTable struct {
	registry *HandleRegistry
	matrices []mgl32.Mat4
	dirty    bool
}

func NewTransformTable(registry *HandleRegistry) *TransformTable {
	return &TransformTable{
		registry: registry,
		matrices: []mgl32.Mat4{mgl32.Ident4()},
		dirty:    true,
	}
}

// Set stores m for h, growing the table up to the registry high-water mark
// when h lies past the current end.
func (t *TransformTable) Set(h ObjectHandle, m mgl32.Mat4) error {
	if !t.registry.Issued(h) {
		return fmt.Errorf("set transform for %d: %w", h, ErrUnknownHandle)
	}
	if int(h) >= len(t.matrices) {
		t.grow(int(t.registry.Last()) + 1)
	}
	t.matrices[h] = m
	t.dirty = true
	return nil
}

// Get returns the matrix for h. Handles inside the table that were never
// written, and NoHandle, yield identity.
func (t *TransformTable) Get(h ObjectHandle) mgl32.Mat4 {
	if int(h) >= len(t.matrices) {
		return mgl32.Ident4()
	}
	return t.matrices[h]
}

func (t *TransformTable) Len() int {
	return len(t.matrices)
}

// Dirty reports whether Set was called since the last MarkClean.
func (t *TransformTable) Dirty() bool {
	return t.dirty
}

func (t *TransformTable) MarkClean() {
	t.dirty = false
}

// Bytes serializes the table as little-endian column-major float32 matrices.
func (t *TransformTable) Bytes() []byte {
	buf := make([]byte, len(t.matrices)*MatrixBytes)
	for i, m := range t.matrices {
		base := i * MatrixBytes
		for j, v := range m {
			binary.LittleEndian.PutUint32(buf[base+j*4:], math.Float32bits(v))
		}
	}
	return buf
}

func (t *TransformTable) grow(n int) {
	for len(t.matrices) < n {
		t.matrices = append(t.matrices, mgl32.Ident4())
	}
}

// Issued reports whether h was handed out by the table's registry.
func (t *TransformTable) Issued(h ObjectHandle) bool {
	return t.registry.Issued(h)
}
