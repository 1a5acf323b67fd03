package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vocdoni/modelpass/config"
	"github.com/vocdoni/modelpass/internal"
)

const (
	defaultLogLevel  = "info"
	defaultLogOutput = "stdout"
	workspaceMaxAge  = 24 * time.Hour
)

// Version is the build version, set at build time with -ldflags
var Version = internal.Version

// Config holds the application configuration
type Config struct {
	API     APIConfig
	DB      DBConfig
	Log     LogConfig
	Toolkit ToolkitConfig
	Datadir string

	// Per command flags
	Output      string `mapstructure:"output"`
	NoStore     bool   `mapstructure:"no-store"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Author      string `mapstructure:"author"`
	SourceURL   string `mapstructure:"source-url"`
	Passport    string `mapstructure:"passport"`
	Certificate string `mapstructure:"certificate"`
	Model       string `mapstructure:"model"`
	Embedded    bool   `mapstructure:"embedded"`
}

// APIConfig holds the API-specific configuration
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DBConfig holds the database backend configuration
type DBConfig struct {
	Type string `mapstructure:"type"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// ToolkitConfig holds the proving toolkit configuration
type ToolkitConfig struct {
	Bin     string        `mapstructure:"bin"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// defaultDatadirPath returns the registry directory inside the user's home.
func defaultDatadirPath() string {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	return filepath.Join(userHomeDir, config.DefaultDatadir)
}

// newFlagSet creates the flag set of one command, preloaded with the flags
// every command shares.
func newFlagSet(command string) *flag.FlagSet {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SortFlags = false
	fs.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error, fatal)")
	fs.String("log.output", defaultLogOutput, "log output (stdout, stderr or filepath)")
	fs.StringP("datadir", "d", defaultDatadirPath(), "data directory for the registry database")
	fs.String("db.type", config.DefaultDBType, fmt.Sprintf("database type %v", config.AvailableDBTypes))
	fs.String("toolkit.bin", config.DefaultToolkitBin, "proving toolkit binary name or path")
	fs.Duration("toolkit.timeout", config.DefaultToolkitTimeout, "timeout per toolkit invocation (0 means none)")
	return fs
}

// loadConfig parses args against fs and resolves the configuration from
// flags, environment variables and defaults, in that order.
func loadConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("datadir", defaultDatadirPath())
	v.SetDefault("db.type", config.DefaultDBType)
	v.SetDefault("toolkit.bin", config.DefaultToolkitBin)
	v.SetDefault("toolkit.timeout", config.DefaultToolkitTimeout)
	v.SetDefault("api.host", config.DefaultAPIHost)
	v.SetDefault("api.port", config.DefaultAPIPort)

	// Configure Viper to use environment variables
	v.SetEnvPrefix("MODELPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind flags to Viper
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	// Unmarshal configuration into struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	validType := false
	for _, t := range config.AvailableDBTypes {
		if cfg.DB.Type == t {
			validType = true
			break
		}
	}
	if !validType {
		return fmt.Errorf("invalid db type %s, available types: %v", cfg.DB.Type, config.AvailableDBTypes)
	}
	if cfg.Toolkit.Bin == "" {
		return fmt.Errorf("toolkit binary cannot be empty")
	}
	return nil
}
