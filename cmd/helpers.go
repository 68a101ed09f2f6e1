package cmd

import (
	"fmt"
	"os"

	"github.com/maxkimambo/taskwatch/internal/config"
	"github.com/maxkimambo/taskwatch/internal/pipeline"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file and applies flag overrides. Flags win over
// environment variables, which win over the file.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	cfg, err := config.Load(opts.configPath, wd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("command") {
		cfg.Build.Command = opts.command
	}
	if flags.Changed("pattern") {
		cfg.Watch.Pattern = opts.pattern
	}
	if flags.Changed("fail-mode") {
		cfg.Build.FailMode = opts.failMode
	}
	return cfg, nil
}

func createPipeline(cmd *cobra.Command, opts *options) (*pipeline.Pipeline, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg)
}
