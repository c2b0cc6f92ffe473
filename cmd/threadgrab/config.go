package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"threadgrab/pkg/config"
	"threadgrab/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage threadgrab configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (THREADGRAB_*)
  - .env and ~/.threadgrab.env
  - Configuration file
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is written to '.threadgrab.yaml' in the current directory unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging all sources. The API key is
masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
}

const exampleConfig = `# threadgrab configuration
#
# Every option can also be set with an environment variable prefixed with
# THREADGRAB_, for example THREADGRAB_DEST or THREADGRAB_LIMIT.

api:
  # Bearer token. Prefer 'threadgrab auth login' or THREADGRAB_API_KEY.
  api_key: ""
  base_url: "https://api.twitter.com"
  timeout: 30s
  # 0 disables pacing
  requests_per_minute: 60
  burst: 5

output:
  # Videos are saved as <directory>/<post id>.mp4
  directory: "./videos"

traversal:
  # Stop after this many posts (0 = whole thread)
  limit: 0
  # Stop at the first post whose id is at or below this one
  stop_at: ""

download:
  tool: "ffmpeg"
  # Per-download time limit
  timeout: 5m
  # How often buffered ffmpeg output is flushed to the debug log
  checkpoint_interval: 30s

notifications:
  enabled: false

logging:
  # trace, debug, info, warn, error or disabled
  level: "info"
  # Optional log file; logs go to stderr when empty
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".threadgrab.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	ui.PrintSuccess("Created " + path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, changedFlags(cmd))
	if err != nil {
		return err
	}

	cfg.API.APIKey = config.MaskSecret(cfg.API.APIKey)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
