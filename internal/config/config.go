package config

// Config represents the full application configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Security SecurityConfig `yaml:"security"`
	Rules    RulesConfig    `yaml:"rules"`
	Output   OutputConfig   `yaml:"output"`
	Store    StoreConfig    `yaml:"store"`
	AI       AIConfig       `yaml:"ai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AnalysisConfig controls file analysis and detector thresholds.
type AnalysisConfig struct {
	MaxWorkers        int      `yaml:"maxWorkers"`
	MaxComplexity     int      `yaml:"maxComplexity"`
	MaxFunctionLength int      `yaml:"maxFunctionLength"`
	MaxParameters     int      `yaml:"maxParameters"`
	MinSeverity       string   `yaml:"minSeverity"`
	Exclude           []string `yaml:"exclude"`
}

// SecurityConfig controls secret scanning.
type SecurityConfig struct {
	Enabled          bool    `yaml:"enabled"`
	EntropyThreshold float64 `yaml:"entropyThreshold"`
}

// RulesConfig points at user-defined pattern rules.
type RulesConfig struct {
	CustomRulesFile string `yaml:"customRulesFile"`
}

// OutputConfig selects the report format and destination.
type OutputConfig struct {
	Format    string `yaml:"format"`
	Directory string `yaml:"directory"`
}

// StoreConfig configures run-history persistence.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AIConfig configures the optional explanation provider.
type AIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"apiKey"`
	Model     string `yaml:"model"`
	MaxIssues int    `yaml:"maxIssues"`
	Timeout   string `yaml:"timeout"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}
