package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the YAML configuration file structure.
type YAMLConfig struct {
	Batch     BatchYAMLConfig     `yaml:"batch"`
	Autoscale AutoscaleYAMLConfig `yaml:"autoscale"`
	Pipeline  PipelineYAMLConfig  `yaml:"pipeline"`
	Neo4j     Neo4jYAMLConfig     `yaml:"neo4j"`
	Fallback  FallbackYAMLConfig  `yaml:"fallback"`
	Stats     StatsYAMLConfig     `yaml:"stats"`
	Engine    EngineYAMLConfig    `yaml:"engine"`
	Memory    MemoryYAMLConfig    `yaml:"memory"`
	Logging   LoggingYAMLConfig   `yaml:"logging"`
}

// BatchYAMLConfig holds batch sizing configuration.
type BatchYAMLConfig struct {
	Size int `yaml:"size"`
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
}

// AutoscaleYAMLConfig holds autoscaler thresholds.
type AutoscaleYAMLConfig struct {
	HighWater      float64 `yaml:"high_water"`
	LowWater       float64 `yaml:"low_water"`
	AvailableFloor int64   `yaml:"available_floor_bytes"`
	ShrinkFactor   float64 `yaml:"shrink_factor"`
	GrowFactor     float64 `yaml:"grow_factor"`
}

// PipelineYAMLConfig holds pipeline tuning configuration.
type PipelineYAMLConfig struct {
	ScoreConcurrency int      `yaml:"score_concurrency"`
	MinQualityScore  *float64 `yaml:"min_quality_score"`
	GeneratorSeed    int64    `yaml:"generator_seed"`
}

// Neo4jYAMLConfig holds primary store connection settings.
type Neo4jYAMLConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// FallbackYAMLConfig holds fallback store settings.
type FallbackYAMLConfig struct {
	Dir         string `yaml:"dir"`
	Compression bool   `yaml:"compression"`
}

// StatsYAMLConfig holds stats endpoint settings.
type StatsYAMLConfig struct {
	Addr          string `yaml:"addr"`
	ProgressEvery int    `yaml:"progress_every"`
}

// EngineYAMLConfig holds cycle loop settings.
type EngineYAMLConfig struct {
	CyclePause   Duration `yaml:"cycle_pause"`
	ErrorBackoff Duration `yaml:"error_backoff"`
	MaxCycles    int      `yaml:"max_cycles"`
}

// MemoryYAMLConfig holds memory limit configuration.
type MemoryYAMLConfig struct {
	LimitRatio float64 `yaml:"limit_ratio"`
}

// LoggingYAMLConfig holds logging configuration.
type LoggingYAMLConfig struct {
	Level string `yaml:"level"`
}

// Duration wraps time.Duration for YAML parsing of strings like "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	duration, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// LoadYAML loads configuration from a YAML file.
func LoadYAML(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// ParseYAML parses YAML configuration from bytes.
func ParseYAML(data []byte) (*YAMLConfig, error) {
	cfg := &YAMLConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults sets default values for unspecified fields.
func (y *YAMLConfig) ApplyDefaults() {
	def := DefaultConfig()

	if y.Batch.Size == 0 {
		y.Batch.Size = def.InitialBatchSize
	}
	if y.Batch.Min == 0 {
		y.Batch.Min = def.MinBatchSize
	}
	if y.Batch.Max == 0 {
		y.Batch.Max = def.MaxBatchSize
	}

	if y.Autoscale.HighWater == 0 {
		y.Autoscale.HighWater = def.MemoryHighWater
	}
	if y.Autoscale.LowWater == 0 {
		y.Autoscale.LowWater = def.MemoryLowWater
	}
	if y.Autoscale.AvailableFloor == 0 {
		y.Autoscale.AvailableFloor = def.AvailableFloorBytes
	}
	if y.Autoscale.ShrinkFactor == 0 {
		y.Autoscale.ShrinkFactor = def.ShrinkFactor
	}
	if y.Autoscale.GrowFactor == 0 {
		y.Autoscale.GrowFactor = def.GrowFactor
	}

	if y.Pipeline.MinQualityScore == nil {
		minScore := def.MinQualityScore
		y.Pipeline.MinQualityScore = &minScore
	}

	if y.Neo4j.URI == "" {
		y.Neo4j.URI = def.Neo4jURI
	}
	if y.Neo4j.Username == "" {
		y.Neo4j.Username = def.Neo4jUsername
	}
	if y.Neo4j.Database == "" {
		y.Neo4j.Database = def.Neo4jDatabase
	}

	if y.Fallback.Dir == "" {
		y.Fallback.Dir = def.FallbackDir
	}

	if y.Stats.Addr == "" {
		y.Stats.Addr = def.StatsAddr
	}
	if y.Stats.ProgressEvery == 0 {
		y.Stats.ProgressEvery = def.ProgressEvery
	}

	if y.Engine.CyclePause == 0 {
		y.Engine.CyclePause = Duration(def.CyclePause)
	}
	if y.Engine.ErrorBackoff == 0 {
		y.Engine.ErrorBackoff = Duration(def.ErrorBackoff)
	}

	if y.Memory.LimitRatio == 0 {
		y.Memory.LimitRatio = def.MemoryLimitRatio
	}

	if y.Logging.Level == "" {
		y.Logging.Level = def.LogLevel
	}
}

// ToConfig converts the YAML configuration to the flat Config.
func (y *YAMLConfig) ToConfig() *Config {
	return &Config{
		InitialBatchSize: y.Batch.Size,
		MinBatchSize:     y.Batch.Min,
		MaxBatchSize:     y.Batch.Max,

		MemoryHighWater:     y.Autoscale.HighWater,
		MemoryLowWater:      y.Autoscale.LowWater,
		AvailableFloorBytes: y.Autoscale.AvailableFloor,
		ShrinkFactor:        y.Autoscale.ShrinkFactor,
		GrowFactor:          y.Autoscale.GrowFactor,

		ScoreConcurrency: y.Pipeline.ScoreConcurrency,
		MinQualityScore:  *y.Pipeline.MinQualityScore,
		GeneratorSeed:    y.Pipeline.GeneratorSeed,

		Neo4jURI:      y.Neo4j.URI,
		Neo4jUsername: y.Neo4j.Username,
		Neo4jPassword: y.Neo4j.Password,
		Neo4jDatabase: y.Neo4j.Database,

		FallbackDir:         y.Fallback.Dir,
		FallbackCompression: y.Fallback.Compression,

		StatsAddr:     y.Stats.Addr,
		ProgressEvery: y.Stats.ProgressEvery,

		CyclePause:   time.Duration(y.Engine.CyclePause),
		ErrorBackoff: time.Duration(y.Engine.ErrorBackoff),
		MaxCycles:    y.Engine.MaxCycles,

		MemoryLimitRatio: y.Memory.LimitRatio,

		LogLevel: y.Logging.Level,
	}
}
