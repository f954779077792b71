package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagTicks     = flag.Int("ticks", 0, "Number of ticks to simulate")
	flagRows      = flag.Int("rows", 0, "Cloth rows (and columns)")
	flagTimestep  = flag.Float64("timestep", 0, "Fixed timestep override in seconds")
	flagCollision = flag.String("collision", "", "Collision mode: gjk or analytic")
	flagSelf      = flag.Bool("self-collision", false, "Enable cloth self collision")
	flagLogFile   = flag.String("log-file", "", "Write logs to a rotating file")
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
		cfg.Simulation.DebugDraw = true
	}
	if *flagTicks > 0 {
		cfg.Simulation.Ticks = *flagTicks
	}
	if *flagRows > 0 {
		cfg.Cloth.Rows = *flagRows
	}
	if *flagTimestep > 0 {
		cfg.Simulation.Timestep = float32(*flagTimestep)
	}
	if *flagCollision != "" {
		cfg.Simulation.CollisionMode = *flagCollision
	}
	if *flagSelf {
		cfg.Collision.SelfCollision = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
