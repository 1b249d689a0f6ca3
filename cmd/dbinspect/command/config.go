package command

// Config describes the configuration for dbinspect. It is optional: every
// field has a usable default, and most invocations never need a config
// file at all.
type Config struct {
	// DefaultFormat controls the output of "dbinspect schema" when -format
	// isn't given on the command line.
	DefaultFormat string `yaml:"default_format"`

	// Verbose turns on debug-level logging for the schema command; the
	// page command reads no config.
	Verbose bool `yaml:"verbose"`
}

func defaultConfig() *Config {
	return &Config{DefaultFormat: "table"}
}
