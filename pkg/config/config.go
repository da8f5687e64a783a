// Package config loads assetpipe project configuration.
//
// Configuration is resolved in three layers: built-in defaults, values
// detected from a site generator config.toml when present, and an
// optional .assetpipe.yaml at the project root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for assetpipe.
type Config struct {
	// AssetRoot is the directory tree holding binary/static files.
	AssetRoot string `mapstructure:"asset_root"`
	// SourceRoot is the directory tree holding page/template text files.
	SourceRoot string `mapstructure:"source_root"`
	// AssetPrefix is the URL prefix under which assets are served.
	AssetPrefix string `mapstructure:"asset_prefix"`
	// SourceExts lists the text file extensions scanned for references.
	SourceExts []string `mapstructure:"source_exts"`
	// Include/Exclude are doublestar globs applied during scanning.
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
	// KnownNames maps exact original filenames to curated replacement
	// filenames. Highest-priority naming rule.
	KnownNames map[string]string `mapstructure:"known_names"`
	// CategoryKeywords overrides the per-category keyword tables.
	CategoryKeywords map[string][]string `mapstructure:"category_keywords"`

	Convert ConvertConfig `mapstructure:"convert"`
}

// ConvertConfig holds image re-encoding options.
type ConvertConfig struct {
	Quality        int               `mapstructure:"quality"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	Tools          map[string]string `mapstructure:"tools"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AssetRoot:   "public",
		SourceRoot:  "src",
		AssetPrefix: "/cdn-assets/",
		SourceExts:  []string{".html", ".htm", ".astro", ".ts", ".tsx", ".js", ".jsx", ".css"},
		Convert: ConvertConfig{
			Quality:        100,
			TimeoutSeconds: 60,
		},
	}
}

// Load reads .assetpipe.yaml from dir, falling back to defaults. When no
// config file names an asset root, the site generator's config.toml is
// consulted for its static directory.
func Load(dir string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName(".assetpipe")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("asset_root", cfg.AssetRoot)
	v.SetDefault("source_root", cfg.SourceRoot)
	v.SetDefault("asset_prefix", cfg.AssetPrefix)
	v.SetDefault("source_exts", cfg.SourceExts)
	v.SetDefault("convert.quality", cfg.Convert.Quality)
	v.SetDefault("convert.timeout_seconds", cfg.Convert.TimeoutSeconds)

	explicit := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errorsAs(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		explicit = false
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Without an explicit config, try the site generator's own config
	// for the static directory.
	if !explicit {
		if root, ok := detectStaticDir(dir); ok {
			cfg.AssetRoot = root
		}
	}

	return cfg, nil
}

// detectStaticDir reads a site generator config.toml in dir and returns
// its static directory setting when one is declared.
func detectStaticDir(dir string) (string, bool) {
	for _, name := range []string{"config.toml", "hugo.toml"} {
		data, err := os.ReadFile(filepath.Join(dir, name)) // #nosec G304 -- fixed names under caller-supplied root
		if err != nil {
			continue
		}
		var site struct {
			StaticDir string `toml:"staticDir"`
			PublicDir string `toml:"publicDir"`
		}
		if err := toml.Unmarshal(data, &site); err != nil {
			continue
		}
		if site.StaticDir != "" {
			return site.StaticDir, true
		}
		if site.PublicDir != "" {
			return site.PublicDir, true
		}
	}
	return "", false
}

// LoadKnownNames reads a curated filename table from a YAML or JSON file.
func LoadKnownNames(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied table path
	if err != nil {
		return nil, fmt.Errorf("failed to read known-names table: %w", err)
	}
	names := make(map[string]string)
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse known-names table: %w", err)
	}
	return names, nil
}

// errorsAs is a small indirection so the viper sentinel check reads cleanly.
func errorsAs(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}
