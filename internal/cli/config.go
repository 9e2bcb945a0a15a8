package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshsurgery/pkg/cache"
	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/pipeline"
)

// Config is the contents of config.toml. Command-line flags override it.
type Config struct {
	Mesh  MeshConfig  `toml:"mesh"`
	Cache CacheConfig `toml:"cache"`
	Log   LogConfig   `toml:"log"`
}

// MeshConfig holds the default build and collapse options.
type MeshConfig struct {
	Shape      string  `toml:"shape"`
	Resolution int     `toml:"resolution"`
	Radius     float64 `toml:"radius"`
	Seed       uint64  `toml:"seed"`
}

// CacheConfig selects the mesh cache backend.
type CacheConfig struct {
	Backend         string   `toml:"backend"`
	TTL             Duration `toml:"ttl"`
	Dir             string   `toml:"dir"`
	RedisURL        string   `toml:"redis_url"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string ("72h") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Mesh: MeshConfig{
			Shape: pipeline.DefaultShape,
			Seed:  pipeline.DefaultSeed,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.TTLMesh},
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads the TOML file at path on top of [DefaultConfig]. A
// missing file yields the defaults. Unknown keys and invalid values are
// reported as INVALID_CONFIG.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks every value of the config.
func (c Config) Validate() error {
	if c.Mesh.Shape != "" {
		if err := pipeline.ValidateShape(c.Mesh.Shape); err != nil {
			return err
		}
	}
	if c.Mesh.Resolution < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "mesh.resolution must be >= 0, got %d", c.Mesh.Resolution)
	}
	if c.Mesh.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "mesh.radius must be >= 0, got %g", c.Mesh.Radius)
	}
	if c.Cache.Backend != "" && !slices.Contains(cache.Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q must be one of: %s", c.Cache.Backend, strings.Join(cache.Backends, ", "))
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if _, err := log.ParseLevel(c.Log.Level); c.Log.Level != "" && err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "log.level %q is not a level", c.Log.Level)
	}
	return nil
}

func (c Config) logLevel() (log.Level, bool) {
	if c.Log.Level == "" {
		return 0, false
	}
	level, err := log.ParseLevel(c.Log.Level)
	return level, err == nil
}

func (c Config) cacheConfig() cache.Config {
	backend := c.Cache.Backend
	if backend == "" {
		backend = cache.BackendFile
	}
	return cache.Config{
		Backend:         backend,
		Dir:             c.Cache.Dir,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
		Namespace:       keyPrefix,
	}
}

// applyMesh fills the build options the user left unset from the config.
func (c Config) applyMesh(opts *pipeline.Options) {
	if opts.Shape == "" && opts.Input == "" {
		opts.Shape = c.Mesh.Shape
	}
	if opts.Resolution == 0 {
		opts.Resolution = c.Mesh.Resolution
	}
	if opts.Radius == 0 {
		opts.Radius = c.Mesh.Radius
	}
	if opts.Seed == 0 {
		opts.Seed = c.Mesh.Seed
	}
}

// =============================================================================
// config command
// =============================================================================

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(c.Config)
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create config: %w", err)
			}
			defer f.Close()
			if err := toml.NewEncoder(f).Encode(DefaultConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	path, err := configPath()
	if err != nil {
		return "", fmt.Errorf("get config path: %w", err)
	}
	return path, nil
}
