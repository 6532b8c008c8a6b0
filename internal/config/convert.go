package config

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/blockview/internal/blockdef"
	"github.com/Faultbox/blockview/internal/engine/camera"
	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/internal/snapshot"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.MSAASamples < 0:
		return fmt.Errorf("%w: msaa_samples %d", ErrInvalid, c.Window.MSAASamples)
	case c.Camera.FovDeg <= 0 || c.Camera.FovDeg >= 180:
		return fmt.Errorf("%w: fov_deg %v", ErrInvalid, c.Camera.FovDeg)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: near %v far %v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Snapshot.Size <= 0:
		return fmt.Errorf("%w: snapshot size %d", ErrInvalid, c.Snapshot.Size)
	case c.Snapshot.Supersample < 1:
		return fmt.Errorf("%w: supersample %d", ErrInvalid, c.Snapshot.Supersample)
	}
	if _, err := c.Snapshot.ImageFormat(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Color converts to a geometry color.
func (c RGBA) Color() geometry.Color4 {
	return geometry.RGBA(c[0], c[1], c[2], c[3])
}

// Settings returns the renderer settings.
func (r RenderConfig) Settings() scene.Settings {
	s := scene.Settings{
		Preview: r.Preview,
		SkyUp:   r.SkyUp.Color(),
		SkyDown: r.SkyDown.Color(),
	}
	for i, c := range r.OverrideColors {
		s.OverrideColors[i] = c.Color()
	}
	return s
}

// Visibility returns the initial scene build toggles.
func (v ViewConfig) Visibility() blockdef.Visibility {
	return blockdef.Visibility{
		Slots:    [5]bool{v.MeshData, v.Mesh0, v.Mesh1, v.Mesh2, v.MeshEditorOnly},
		Surfaces: v.Surfaces,
		Edges:    v.Edges,
		Bounds:   v.Bounds,
	}
}

// Apply sets projection, sensitivity and the initial view direction on cam.
func (c CameraConfig) Apply(cam *camera.OrbitCamera) {
	cam.FovY = radians(c.FovDeg)
	cam.Near = c.Near
	cam.Far = c.Far
	cam.RotateSpeed = c.RotateSpeed
	cam.PanSpeed = c.PanSpeed
	cam.ZoomSpeed = c.ZoomSpeed
	cam.LookFrom(radians(c.YawDeg), radians(c.PitchDeg), cam.Distance())
}

// ImageFormat returns the snapshot encoder.
func (s SnapshotConfig) ImageFormat() (snapshot.Format, error) {
	return snapshot.FormatFromPath("x." + strings.ToLower(s.Format))
}

func radians(deg float32) float32 {
	return deg * gomath.Pi / 180
}
