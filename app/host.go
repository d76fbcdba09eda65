package app

// Host is the presentation surface that can go fullscreen.
type Host interface {
	SetFullscreen(on bool) error
	IsFullscreen() bool
}

// nopHost remembers the requested state and never fails.
type nopHost struct {
	fullscreen bool
}

func (h *nopHost) SetFullscreen(on bool) error {
	h.fullscreen = on
	return nil
}

func (h *nopHost) IsFullscreen() bool {
	return h.fullscreen
}
