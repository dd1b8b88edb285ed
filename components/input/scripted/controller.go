// Package scripted implements a controller that plays back a recorded sequence of frames.
//
// A script is a stream of JSON objects, usually one per line:
//
//	{"hold_ms": 500, "axes": {"left_y": -127}, "buttons": {"r1": true}}
//	{"hold_ms": 250}
//
// Each frame is held for hold_ms of clock time. Controls absent from a frame are neutral. Once the
// last frame expires every sample is neutral.
package scripted

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/teleop/components/input"
)

// Frame is one step of a script.
type Frame struct {
	HoldMS  int                    `json:"hold_ms"`
	Axes    map[input.Control]int  `json:"axes,omitempty"`
	Buttons map[input.Control]bool `json:"buttons,omitempty"`
}

// Validate ensures the frame only names known controls.
func (f *Frame) Validate() error {
	if f.HoldMS <= 0 {
		return errors.Errorf("hold_ms must be positive, got %d", f.HoldMS)
	}
	for control, value := range f.Axes {
		if !control.IsAxis() {
			return input.NewUnknownAxisError(control)
		}
		if value != input.ClampAxis(value) {
			return errors.Errorf("axis %q value %d out of range [%d, %d]", control, value, input.AxisMin, input.AxisMax)
		}
	}
	for control := range f.Buttons {
		if !control.IsButton() {
			return input.NewUnknownButtonError(control)
		}
	}
	return nil
}

func (f *Frame) hold() time.Duration {
	return time.Duration(f.HoldMS) * time.Millisecond
}

// ParseFrames reads a stream of JSON frames.
func ParseFrames(r io.Reader) ([]Frame, error) {
	var frames []Frame
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	for {
		var frame Frame
		err := dec.Decode(&frame)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "error decoding frame %d", len(frames))
		}
		if err := frame.Validate(); err != nil {
			return nil, errors.Wrapf(err, "frame %d", len(frames))
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Controller replays frames against a clock.
type Controller struct {
	clk    clock.Clock
	frames []Frame

	mu    sync.Mutex
	start time.Time
}

// NewController returns a controller whose playback starts now on the given clock.
func NewController(frames []Frame, clk clock.Clock) *Controller {
	if clk == nil {
		clk = clock.New()
	}
	return &Controller{clk: clk, frames: frames, start: clk.Now()}
}

// NewControllerFromFile parses the script at path and returns a controller playing it.
func NewControllerFromFile(path string, clk clock.Clock) (*Controller, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open script")
	}
	defer f.Close()
	frames, err := ParseFrames(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse script %q", path)
	}
	return NewController(frames, clk), nil
}

// Restart rewinds playback to the first frame.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.clk.Now()
}

// Duration returns the total playback time of the script.
func (c *Controller) Duration() time.Duration {
	var total time.Duration
	for i := range c.frames {
		total += c.frames[i].hold()
	}
	return total
}

// Done returns whether playback has passed the last frame.
func (c *Controller) Done() bool {
	return c.current() == nil
}

func (c *Controller) current() *Frame {
	c.mu.Lock()
	elapsed := c.clk.Since(c.start)
	c.mu.Unlock()

	for i := range c.frames {
		hold := c.frames[i].hold()
		if elapsed < hold {
			return &c.frames[i]
		}
		elapsed -= hold
	}
	return nil
}

// Axis returns the reading of the current frame.
func (c *Controller) Axis(ctx context.Context, control input.Control) (int, error) {
	if !control.IsAxis() {
		return 0, input.NewUnknownAxisError(control)
	}
	frame := c.current()
	if frame == nil {
		return 0, nil
	}
	return frame.Axes[control], nil
}

// Button returns the button state of the current frame.
func (c *Controller) Button(ctx context.Context, control input.Control) (bool, error) {
	if !control.IsButton() {
		return false, input.NewUnknownButtonError(control)
	}
	frame := c.current()
	if frame == nil {
		return false, nil
	}
	return frame.Buttons[control], nil
}
