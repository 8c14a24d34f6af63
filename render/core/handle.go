package core

import (
	"errors"
	"sync"
)

// ObjectHandle identifies a drawable for the whole process lifetime.
// Every vertex queued for a drawable carries its handle, which the vertex
// shader uses to index the local-to-world table.
type ObjectHandle uint32

// NoHandle is never issued. Untransformed draws (fullscreen quads, HUD) use it.
const NoHandle ObjectHandle = 0

var ErrUnknownHandle = errors.New("object handle was never issued")

// HandleRegistry issues strictly increasing handles and never reuses one.
type HandleRegistry struct {
	lock sync.Mutex
	last ObjectHandle
}

func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{}
}

func (r *HandleRegistry) Next() ObjectHandle {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.last += 1
	return r.last
}

// Last returns the most recently issued handle, or NoHandle if none was issued.
func (r *HandleRegistry) Last() ObjectHandle {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.last
}

func (r *HandleRegistry) Issued(h ObjectHandle) bool {
	if h == NoHandle {
		return false
	}
	return h <= r.Last()
}
