package app

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Command is an input event applied at the start of the next tick.
type Command interface {
	command()
}

// Resize reports a new viewport size in logical pixels and device pixel ratio.
type Resize struct {
	Width, Height int
	PixelRatio    float64
}

// ToggleFullscreen flips fullscreen presentation (double-click).
type ToggleFullscreen struct{}

// Click is a single click at viewport coordinates.
type Click struct {
	X, Y float64
}

// Drag orbits the camera by a pointer movement in logical pixels.
type Drag struct {
	DX, DY float64
}

// Zoom is wheel motion; negative moves the camera in.
type Zoom struct {
	Delta float64
}

func (Resize) command()           {}
func (ToggleFullscreen) command() {}
func (Click) command()            {}
func (Drag) command()             {}
func (Zoom) command()             {}

// Queue collects commands from input producers. It is safe for concurrent
// use; the frame loop drains it once per tick.
type Queue struct {
	mu   sync.Mutex
	cmds []Command
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(cmds ...Command) {
	q.mu.Lock()
	q.cmds = append(q.cmds, cmds...)
	q.mu.Unlock()
}

// Drain returns the pending commands in arrival order and empties the queue.
func (q *Queue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.cmds
	q.cmds = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.cmds)
}

// ParseCommand reads the textual form used in headless scripts:
//
//	resize 1024 768 [dpr]
//	fullscreen
//	click 400 300
//	drag 25 -10
//	zoom -1
func ParseCommand(s string) (Command, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	args, err := parseFloats(fields[1:])
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", s, err)
	}
	need := func(n ...int) error {
		for _, v := range n {
			if len(args) == v {
				return nil
			}
		}
		return fmt.Errorf("command %q: wrong number of arguments", s)
	}

	switch strings.ToLower(fields[0]) {
	case "resize":
		if err := need(2, 3); err != nil {
			return nil, err
		}
		r := Resize{Width: int(args[0]), Height: int(args[1]), PixelRatio: 1}
		if len(args) == 3 {
			r.PixelRatio = args[2]
		}
		return r, nil
	case "fullscreen", "dblclick":
		if err := need(0, 2); err != nil {
			return nil, err
		}
		return ToggleFullscreen{}, nil
	case "click":
		if err := need(2); err != nil {
			return nil, err
		}
		return Click{X: args[0], Y: args[1]}, nil
	case "drag":
		if err := need(2); err != nil {
			return nil, err
		}
		return Drag{DX: args[0], DY: args[1]}, nil
	case "zoom":
		if err := need(1); err != nil {
			return nil, err
		}
		return Zoom{Delta: args[0]}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
