// Package input maps SDL2 events to camera motion and viewer commands.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/blockview/internal/engine/camera"
	"github.com/Faultbox/blockview/internal/viewer"
	"github.com/Faultbox/blockview/pkg/math"
)

var keyCommands = map[sdl.Scancode]viewer.Command{
	sdl.SCANCODE_ESCAPE: {Action: viewer.ActionQuit},
	sdl.SCANCODE_R:      {Action: viewer.ActionResetCamera},
	sdl.SCANCODE_RIGHT:  {Action: viewer.ActionNextDefinition},
	sdl.SCANCODE_DOWN:   {Action: viewer.ActionNextDefinition},
	sdl.SCANCODE_LEFT:   {Action: viewer.ActionPrevDefinition},
	sdl.SCANCODE_UP:     {Action: viewer.ActionPrevDefinition},
	sdl.SCANCODE_1:      {Action: viewer.ActionToggleSlot, Slot: 0},
	sdl.SCANCODE_2:      {Action: viewer.ActionToggleSlot, Slot: 1},
	sdl.SCANCODE_3:      {Action: viewer.ActionToggleSlot, Slot: 2},
	sdl.SCANCODE_4:      {Action: viewer.ActionToggleSlot, Slot: 3},
	sdl.SCANCODE_5:      {Action: viewer.ActionToggleSlot, Slot: 4},
	sdl.SCANCODE_S:      {Action: viewer.ActionToggleSurfaces},
	sdl.SCANCODE_E:      {Action: viewer.ActionToggleEdges},
	sdl.SCANCODE_B:      {Action: viewer.ActionToggleBounds},
	sdl.SCANCODE_P:      {Action: viewer.ActionTogglePreview},
	sdl.SCANCODE_F5:     {Action: viewer.ActionReload},
	sdl.SCANCODE_F12:    {Action: viewer.ActionSnapshot},
}

// Frame is the input gathered by one Update.
type Frame struct {
	Camera   camera.Input
	Commands []viewer.Command

	Resized bool
	Width   int
	Height  int
}

// Input handles all input processing. The right button rotates, the middle
// button pans and the wheel zooms.
type Input struct {
	frame Frame
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		frame: Frame{Commands: make([]viewer.Command, 0, 8)},
	}
}

// Update polls SDL events and accumulates them into a Frame.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.frame = Frame{Commands: i.frame.Commands[:0]}
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.frame.Resized = true
				i.frame.Width = int(e.Data1)
				i.frame.Height = int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			if cmd, ok := keyCommands[e.Keysym.Scancode]; ok {
				if cmd.Action == viewer.ActionQuit {
					quit = true
				}
				i.frame.Commands = append(i.frame.Commands, cmd)
			}

		case *sdl.MouseMotionEvent:
			motion := math.Vec2{X: float32(e.XRel), Y: float32(e.YRel)}
			switch {
			case e.State&sdl.ButtonRMask() != 0:
				i.frame.Camera.Rotate = i.frame.Camera.Rotate.Add(motion)
			case e.State&sdl.ButtonMMask() != 0:
				i.frame.Camera.Pan = i.frame.Camera.Pan.Add(motion)
			}

		case *sdl.MouseWheelEvent:
			wheel := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				wheel = -wheel
			}
			i.frame.Camera.Wheel += wheel
		}
	}

	return quit
}

// Frame returns the input gathered by the last Update.
func (i *Input) Frame() Frame {
	return i.frame
}

// Has reports whether the last Update produced an action.
func (i *Input) Has(a viewer.Action) bool {
	for _, c := range i.frame.Commands {
		if c.Action == a {
			return true
		}
	}
	return false
}
