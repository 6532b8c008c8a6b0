// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Data     DataConfig     `yaml:"data"`
	Camera   CameraConfig   `yaml:"camera"`
	Render   RenderConfig   `yaml:"render"`
	View     ViewConfig     `yaml:"view"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Fullscreen  bool `yaml:"fullscreen"`
	VSync       bool `yaml:"vsync"`
	MSAASamples int  `yaml:"msaa_samples"`
}

// DataConfig holds game data locations.
type DataConfig struct {
	RomDir     string `yaml:"rom_dir"`    // directory containing data/definitions and meshes
	Definition string `yaml:"definition"` // file name selected at startup
	Watch      bool   `yaml:"watch"`      // reload meshes and definitions on change
}

// CameraConfig holds the orbit camera projection and sensitivity.
type CameraConfig struct {
	FovDeg      float32 `yaml:"fov_deg"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	RotateSpeed float32 `yaml:"rotate_speed"`
	PanSpeed    float32 `yaml:"pan_speed"`
	ZoomSpeed   float32 `yaml:"zoom_speed"`
	YawDeg      float32 `yaml:"yaw_deg"`   // initial view direction
	PitchDeg    float32 `yaml:"pitch_deg"` // initial view elevation
}

// RGBA is a color written as [r, g, b, a] with components in 0..1.
type RGBA [4]float32

// RenderConfig holds look settings.
type RenderConfig struct {
	Preview        bool    `yaml:"preview"`
	OverrideColors [3]RGBA `yaml:"override_colors"`
	SkyUp          RGBA    `yaml:"sky_up"`
	SkyDown        RGBA    `yaml:"sky_down"`
	Background     RGBA    `yaml:"background"`
}

// ViewConfig holds the initial visibility toggles.
type ViewConfig struct {
	MeshData       bool `yaml:"mesh_data"`
	Mesh0          bool `yaml:"mesh_0"`
	Mesh1          bool `yaml:"mesh_1"`
	Mesh2          bool `yaml:"mesh_2"`
	MeshEditorOnly bool `yaml:"mesh_editor_only"`
	Surfaces       bool `yaml:"surfaces"`
	Edges          bool `yaml:"edges"`
	Bounds         bool `yaml:"bounds"`
}

// SnapshotConfig holds screenshot and headless render settings.
type SnapshotConfig struct {
	Size        int    `yaml:"size"`        // output edge length in pixels
	Supersample int    `yaml:"supersample"` // render scale before downsampling
	OutputDir   string `yaml:"output_dir"`
	Format      string `yaml:"format"` // png or webp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:       1280,
			Height:      720,
			VSync:       true,
			MSAASamples: 16,
		},
		Data: DataConfig{
			Watch: true,
		},
		Camera: CameraConfig{
			FovDeg:      60,
			Near:        0.01,
			Far:         100,
			RotateSpeed: 0.005,
			PanSpeed:    0.001,
			ZoomSpeed:   0.1,
			YawDeg:      30,
			PitchDeg:    25,
		},
		Render: RenderConfig{
			Preview:        true,
			OverrideColors: [3]RGBA{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}},
			SkyUp:          RGBA{0.75, 0.8, 0.9, 1},
			SkyDown:        RGBA{0.3, 0.28, 0.25, 1},
			Background:     RGBA{0.1, 0.1, 0.15, 1},
		},
		View: ViewConfig{
			MeshData:       true,
			Mesh0:          true,
			Mesh1:          true,
			Mesh2:          true,
			MeshEditorOnly: true,
			Surfaces:       true,
			Edges:          true,
			Bounds:         false,
		},
		Snapshot: SnapshotConfig{
			Size:        512,
			Supersample: 2,
			OutputDir:   "snapshots",
			Format:      "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
