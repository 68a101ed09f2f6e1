package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// DefaultFileNames are looked up in the working directory when no config path is given.
var DefaultFileNames = []string{"taskwatch.jsonc", "taskwatch.json", "taskwatch.yaml", "taskwatch.yml"}

// Environment variables that override file and default values.
const (
	EnvCommand  = "TASKWATCH_COMMAND"
	EnvPattern  = "TASKWATCH_PATTERN"
	EnvFailMode = "TASKWATCH_FAIL_MODE"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load builds the configuration. An explicit path must exist; with an empty
// path the default file names are tried in dir and a missing file simply
// means defaults. Environment overrides are applied last.
func Load(path, dir string) (*Config, error) {
	if path == "" {
		path = findDefault(dir)
	}

	cfg := &Config{}
	if path != "" {
		parsed, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		cfg = parsed
		cfg.Source = path
		logger.Op.WithFields(map[string]interface{}{"path": path}).Debug("Loaded config file")
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func findDefault(dir string) string {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// templates live inside string values, so expand before parsing
	expanded := []byte(expandEnvTemplates(string(data)))

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jsonc":
		std, err := hujson.Standardize(expanded)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := json.Unmarshal(std, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	default:
		return nil, errors.New("unsupported config format " + ext + " (use .json, .jsonc, .yaml or .yml)")
	}
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvCommand); v != "" {
		cfg.Build.Command = v
	}
	if v := os.Getenv(EnvPattern); v != "" {
		cfg.Watch.Pattern = v
	}
	if v := os.Getenv(EnvFailMode); v != "" {
		cfg.Build.FailMode = v
	}
}
