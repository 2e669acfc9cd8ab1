package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// version is set at build time via ldflags
var version = "dev"

// Version returns the build version string.
func Version() string {
	return version
}

// Config holds the application configuration.
type Config struct {
	// Batch sizing
	InitialBatchSize int
	MinBatchSize     int
	MaxBatchSize     int

	// Autoscaler thresholds
	MemoryHighWater     float64 // used fraction above which the batch shrinks
	MemoryLowWater      float64 // used fraction below which the batch may grow
	AvailableFloorBytes int64   // minimum available bytes required to grow
	ShrinkFactor        float64
	GrowFactor          float64

	// Pipeline settings
	ScoreConcurrency int     // 0 = GOMAXPROCS
	MinQualityScore  float64 // composition score floor for a valid record
	GeneratorSeed    int64   // 0 = time-based seed

	// Neo4j settings
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Neo4jDatabase string

	// Fallback store settings
	FallbackDir         string
	FallbackCompression bool

	// Stats settings
	StatsAddr     string
	ProgressEvery int

	// Engine settings
	CyclePause   time.Duration // pause between successful cycles
	ErrorBackoff time.Duration // fixed backoff after a failed cycle step
	MaxCycles    int           // 0 = run until signaled

	// Memory limit settings
	MemoryLimitRatio float64 // ratio of container memory to use for GOMEMLIMIT

	// Logging settings
	LogLevel string

	// Flags
	ShowVersion bool
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		InitialBatchSize:    10,
		MinBatchSize:        8,
		MaxBatchSize:        100,
		MemoryHighWater:     0.90,
		MemoryLowWater:      0.60,
		AvailableFloorBytes: 40 << 30,
		ShrinkFactor:        0.8,
		GrowFactor:          1.25,
		ScoreConcurrency:    0,
		MinQualityScore:     0.3,
		GeneratorSeed:       0,
		Neo4jURI:            "bolt://localhost:7687",
		Neo4jUsername:       "neo4j",
		Neo4jPassword:       "",
		Neo4jDatabase:       "neo4j",
		FallbackDir:         "discoveries",
		FallbackCompression: false,
		StatsAddr:           ":9090",
		ProgressEvery:       5,
		CyclePause:          100 * time.Millisecond,
		ErrorBackoff:        2 * time.Second,
		MaxCycles:           0,
		MemoryLimitRatio:    0.9,
		LogLevel:            "info",
	}
}

// ParseFlags parses command line flags and returns the configuration.
// When -config points at a YAML file its values are loaded first and
// explicitly-set flags override them.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to YAML configuration file")

	// Batch flags
	flag.IntVar(&cfg.InitialBatchSize, "batch-size", cfg.InitialBatchSize, "Initial sequences per cycle")
	flag.IntVar(&cfg.MinBatchSize, "batch-min", cfg.MinBatchSize, "Minimum sequences per cycle")
	flag.IntVar(&cfg.MaxBatchSize, "batch-max", cfg.MaxBatchSize, "Maximum sequences per cycle")

	// Autoscaler flags
	flag.Float64Var(&cfg.MemoryHighWater, "memory-high-water", cfg.MemoryHighWater, "Used memory fraction above which batch size shrinks")
	flag.Float64Var(&cfg.MemoryLowWater, "memory-low-water", cfg.MemoryLowWater, "Used memory fraction below which batch size may grow")
	flag.Int64Var(&cfg.AvailableFloorBytes, "memory-available-floor", cfg.AvailableFloorBytes, "Minimum available bytes required to grow batch size")
	flag.Float64Var(&cfg.ShrinkFactor, "scale-down-factor", cfg.ShrinkFactor, "Multiplier applied when shrinking batch size")
	flag.Float64Var(&cfg.GrowFactor, "scale-up-factor", cfg.GrowFactor, "Multiplier applied when growing batch size")

	// Pipeline flags
	flag.IntVar(&cfg.ScoreConcurrency, "score-concurrency", cfg.ScoreConcurrency, "Parallel scoring workers per batch (0 = GOMAXPROCS)")
	flag.Float64Var(&cfg.MinQualityScore, "min-quality-score", cfg.MinQualityScore, "Minimum composition score for a valid discovery")
	flag.Int64Var(&cfg.GeneratorSeed, "generator-seed", cfg.GeneratorSeed, "Sequence generator seed (0 = time-based)")

	// Neo4j flags
	flag.StringVar(&cfg.Neo4jURI, "neo4j-uri", cfg.Neo4jURI, "Neo4j bolt URI")
	flag.StringVar(&cfg.Neo4jUsername, "neo4j-username", cfg.Neo4jUsername, "Neo4j username")
	flag.StringVar(&cfg.Neo4jPassword, "neo4j-password", cfg.Neo4jPassword, "Neo4j password")
	flag.StringVar(&cfg.Neo4jDatabase, "neo4j-database", cfg.Neo4jDatabase, "Neo4j database name")

	// Fallback store flags
	flag.StringVar(&cfg.FallbackDir, "fallback-dir", cfg.FallbackDir, "Directory for fallback discovery files")
	flag.BoolVar(&cfg.FallbackCompression, "fallback-compression", cfg.FallbackCompression, "Compress fallback files with zstd")

	// Stats flags
	flag.StringVar(&cfg.StatsAddr, "stats-listen", cfg.StatsAddr, "Stats HTTP listen address (/metrics, /healthz, /readyz)")
	flag.IntVar(&cfg.ProgressEvery, "progress-every", cfg.ProgressEvery, "Log a progress report every N cycles")

	// Engine flags
	flag.DurationVar(&cfg.CyclePause, "cycle-pause", cfg.CyclePause, "Pause between successful cycles")
	flag.DurationVar(&cfg.ErrorBackoff, "error-backoff", cfg.ErrorBackoff, "Backoff after a failed cycle step")
	flag.IntVar(&cfg.MaxCycles, "max-cycles", cfg.MaxCycles, "Stop after N cycles (0 = run until signaled)")

	// Memory limit flags
	flag.Float64Var(&cfg.MemoryLimitRatio, "memory-limit-ratio", cfg.MemoryLimitRatio, "Ratio of container memory for GOMEMLIMIT")

	// Logging flags
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level: debug, info, warn, error")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Parse()

	if cfg.ShowVersion {
		fmt.Printf("discovery-engine %s\n", version)
		os.Exit(0)
	}

	if configFile != "" {
		yamlCfg, err := LoadYAML(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
		cfg = yamlCfg.ToConfig()
		// Explicit flags win over file values.
		applyExplicitFlags(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyExplicitFlags re-applies flags the user actually set on the command
// line on top of a file-derived config.
func applyExplicitFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "batch-size":
			cfg.InitialBatchSize = intFlag(f)
		case "batch-min":
			cfg.MinBatchSize = intFlag(f)
		case "batch-max":
			cfg.MaxBatchSize = intFlag(f)
		case "memory-high-water":
			cfg.MemoryHighWater = floatFlag(f)
		case "memory-low-water":
			cfg.MemoryLowWater = floatFlag(f)
		case "memory-available-floor":
			cfg.AvailableFloorBytes = int64Flag(f)
		case "scale-down-factor":
			cfg.ShrinkFactor = floatFlag(f)
		case "scale-up-factor":
			cfg.GrowFactor = floatFlag(f)
		case "score-concurrency":
			cfg.ScoreConcurrency = intFlag(f)
		case "min-quality-score":
			cfg.MinQualityScore = floatFlag(f)
		case "generator-seed":
			cfg.GeneratorSeed = int64Flag(f)
		case "neo4j-uri":
			cfg.Neo4jURI = f.Value.String()
		case "neo4j-username":
			cfg.Neo4jUsername = f.Value.String()
		case "neo4j-password":
			cfg.Neo4jPassword = f.Value.String()
		case "neo4j-database":
			cfg.Neo4jDatabase = f.Value.String()
		case "fallback-dir":
			cfg.FallbackDir = f.Value.String()
		case "fallback-compression":
			cfg.FallbackCompression = boolFlag(f)
		case "stats-listen":
			cfg.StatsAddr = f.Value.String()
		case "progress-every":
			cfg.ProgressEvery = intFlag(f)
		case "cycle-pause":
			cfg.CyclePause = durationFlag(f)
		case "error-backoff":
			cfg.ErrorBackoff = durationFlag(f)
		case "max-cycles":
			cfg.MaxCycles = intFlag(f)
		case "memory-limit-ratio":
			cfg.MemoryLimitRatio = floatFlag(f)
		case "log-level":
			cfg.LogLevel = f.Value.String()
		}
	})
}

func intFlag(f *flag.Flag) int {
	v, _ := f.Value.(flag.Getter).Get().(int)
	return v
}

func int64Flag(f *flag.Flag) int64 {
	v, _ := f.Value.(flag.Getter).Get().(int64)
	return v
}

func floatFlag(f *flag.Flag) float64 {
	v, _ := f.Value.(flag.Getter).Get().(float64)
	return v
}

func boolFlag(f *flag.Flag) bool {
	v, _ := f.Value.(flag.Getter).Get().(bool)
	return v
}

func durationFlag(f *flag.Flag) time.Duration {
	v, _ := f.Value.(flag.Getter).Get().(time.Duration)
	return v
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MinBatchSize < 1 {
		return fmt.Errorf("batch-min must be at least 1, got %d", c.MinBatchSize)
	}
	if c.MaxBatchSize < c.MinBatchSize {
		return fmt.Errorf("batch-max (%d) must be >= batch-min (%d)", c.MaxBatchSize, c.MinBatchSize)
	}
	if c.InitialBatchSize < c.MinBatchSize || c.InitialBatchSize > c.MaxBatchSize {
		return fmt.Errorf("batch-size (%d) must be within [%d, %d]", c.InitialBatchSize, c.MinBatchSize, c.MaxBatchSize)
	}
	if c.MemoryHighWater <= 0 || c.MemoryHighWater > 1 {
		return fmt.Errorf("memory-high-water must be in (0, 1], got %v", c.MemoryHighWater)
	}
	if c.MemoryLowWater < 0 || c.MemoryLowWater >= c.MemoryHighWater {
		return fmt.Errorf("memory-low-water must be in [0, high-water), got %v", c.MemoryLowWater)
	}
	if c.ShrinkFactor <= 0 || c.ShrinkFactor >= 1 {
		return fmt.Errorf("scale-down-factor must be in (0, 1), got %v", c.ShrinkFactor)
	}
	if c.GrowFactor <= 1 {
		return fmt.Errorf("scale-up-factor must be > 1, got %v", c.GrowFactor)
	}
	if c.MinQualityScore < 0 || c.MinQualityScore > 1 {
		return fmt.Errorf("min-quality-score must be in [0, 1], got %v", c.MinQualityScore)
	}
	if c.ProgressEvery < 1 {
		return fmt.Errorf("progress-every must be at least 1, got %d", c.ProgressEvery)
	}
	if c.ErrorBackoff < 0 {
		return fmt.Errorf("error-backoff must not be negative, got %v", c.ErrorBackoff)
	}
	if c.MemoryLimitRatio <= 0 || c.MemoryLimitRatio > 1 {
		return fmt.Errorf("memory-limit-ratio must be in (0, 1], got %v", c.MemoryLimitRatio)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}
