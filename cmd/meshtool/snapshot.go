package main

import (
	"fmt"
	"image"
	gomath "math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/assets"
	"github.com/Faultbox/blockview/internal/blockdef"
	"github.com/Faultbox/blockview/internal/config"
	"github.com/Faultbox/blockview/internal/engine/camera"
	"github.com/Faultbox/blockview/internal/engine/raster"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/internal/logger"
	"github.com/Faultbox/blockview/internal/snapshot"
	"github.com/Faultbox/blockview/pkg/formats"
)

// renderOptions controls a headless render.
type renderOptions struct {
	Size        int
	Supersample int
	YawDeg      float32
	PitchDeg    float32
	Visibility  blockdef.Visibility
	Render      config.RenderConfig
	Camera      config.CameraConfig
}

func defaultRenderOptions() renderOptions {
	cfg := config.Default()
	return renderOptions{
		Size:        cfg.Snapshot.Size,
		Supersample: cfg.Snapshot.Supersample,
		YawDeg:      cfg.Camera.YawDeg,
		PitchDeg:    cfg.Camera.PitchDeg,
		Visibility:  cfg.View.Visibility(),
		Render:      cfg.Render,
		Camera:      cfg.Camera,
	}
}

var (
	snapOpts       = defaultRenderOptions()
	snapOutput     string
	snapNoSurfaces bool
	snapBounds     bool
	snapNoPreview  bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <romdir> <definition.xml>",
	Short: "Render a block definition to a PNG or WebP image",
	Long: `Render a block definition with the software rasterizer. The image is drawn
at size*supersample pixels and downsampled, with a transparent background.`,
	Args: cobra.ExactArgs(2),
	RunE: runSnapshot,
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVarP(&snapOutput, "output", "o", "", "Output file (.png or .webp), default <definition>.png")
	f.IntVar(&snapOpts.Size, "size", snapOpts.Size, "Output edge length in pixels")
	f.IntVar(&snapOpts.Supersample, "supersample", snapOpts.Supersample, "Render scale before downsampling")
	f.Float32Var(&snapOpts.YawDeg, "yaw", snapOpts.YawDeg, "View yaw in degrees")
	f.Float32Var(&snapOpts.PitchDeg, "pitch", snapOpts.PitchDeg, "View pitch in degrees")
	f.BoolVar(&snapNoSurfaces, "no-surfaces", false, "Hide surface decals and their edges")
	f.BoolVar(&snapBounds, "bounds", false, "Draw submesh bounding boxes")
	f.BoolVar(&snapNoPreview, "no-preview", false, "Keep paint reference colors")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	romDir, name := args[0], args[1]
	if snapOpts.Size <= 0 || snapOpts.Supersample < 1 {
		return fmt.Errorf("invalid size %d or supersample %d", snapOpts.Size, snapOpts.Supersample)
	}

	cat, err := blockdef.Open(romDir)
	if cat == nil {
		return err
	}
	i, ok := cat.Find(name)
	if !ok {
		return fmt.Errorf("definition %q not found in %s", name, romDir)
	}
	def, err := cat.Definitions[i].Parsed()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	opts := snapOpts
	if snapNoSurfaces {
		opts.Visibility.Surfaces = false
		opts.Visibility.Edges = false
	}
	opts.Visibility.Bounds = snapBounds
	if snapNoPreview {
		opts.Render.Preview = false
	}

	img, res, err := renderDefinition(romDir, def, assets.NewMeshCache(), opts)
	if err != nil {
		return err
	}
	if err := res.Errors.Err(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	out := snapOutput
	if out == "" {
		file := cat.Definitions[i].Filename
		out = strings.TrimSuffix(file, filepath.Ext(file)) + ".png"
	}
	if err := snapshot.Save(out, img); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d meshes, %d surfaces -> %s\n", name, res.Meshes, res.Surfaces, out)
	return nil
}

// renderDefinition builds def into a scene and renders it on the software
// device, framed like the viewer frames a new selection.
func renderDefinition(romDir string, def *formats.Definition, loader blockdef.MeshLoader, opts renderOptions) (*image.NRGBA, blockdef.Result, error) {
	s := scene.New()
	res := blockdef.Build(s, romDir, def, opts.Visibility, loader)

	cam := camera.NewOrbitCamera()
	opts.Camera.YawDeg, opts.Camera.PitchDeg = opts.YawDeg, opts.PitchDeg
	opts.Camera.Apply(cam)
	cam.SetAspect(1, 1)
	if res.HasBounds {
		cam.FitBounds(res.Lo, res.Hi)
	}

	px := opts.Size * opts.Supersample
	dev := raster.NewDevice(px, px)
	r, err := scene.NewRenderer(dev, opts.Render.Settings())
	if err != nil {
		return nil, res, err
	}
	defer r.Destroy()

	r.Sync(s, cam)
	if err := r.LastError(); err != nil {
		return nil, res, err
	}

	stats := dev.Stats()
	logger.Named("snapshot").Debug("rendered",
		zap.Int("draw_calls", stats.DrawCalls),
		zap.Int("triangles", stats.Triangles),
		zap.Int("culled", stats.Culled),
		zap.Float64("fov_deg", float64(cam.FovY)*180/gomath.Pi))

	return snapshot.Downsample(dev.Image(), opts.Supersample), res, nil
}
