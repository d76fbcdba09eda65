package texture

import (
	"sync/atomic"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/vectors"
)

// Slot is a named texture binding that may be filled after rendering starts.
// An empty slot samples as transparent black.
type Slot struct {
	Name string
	tex  atomic.Pointer[Texture]
}

func NewSlot(name string) *Slot {
	return &Slot{Name: name}
}

// Set publishes t to all readers.
func (s *Slot) Set(t *Texture) {
	s.tex.Store(t)
}

// Get returns the bound texture or nil.
func (s *Slot) Get() *Texture {
	if s == nil {
		return nil
	}
	return s.tex.Load()
}

func (s *Slot) Loaded() bool {
	return s.Get() != nil
}

func (s *Slot) SampleUV(u, v float64) colors.Color4 {
	t := s.Get()
	if t == nil {
		return colors.Transparent()
	}
	return t.SampleUV(u, v)
}

func (s *Slot) SampleSphere(local vectors.Vec3) colors.Color4 {
	t := s.Get()
	if t == nil {
		return colors.Transparent()
	}
	return t.SampleSphere(local)
}
