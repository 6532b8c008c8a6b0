package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagRom    = flag.String("rom", "", "ROM directory containing data/definitions")
	flagDef    = flag.String("def", "", "Definition file name to select at startup")
	flagWidth  = flag.Int("width", 0, "Window width")
	flagHeight = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRom != "" {
		cfg.Data.RomDir = *flagRom
	}
	if *flagDef != "" {
		cfg.Data.Definition = *flagDef
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
