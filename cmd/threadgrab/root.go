package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"threadgrab/pkg/scraper"
	"threadgrab/pkg/tweetid"
	"threadgrab/pkg/ui"
)

var (
	// Version information
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	verbose    int

	// Run flags
	apiKey          string
	destDir         string
	limit           int
	stopAt          string
	ffmpegPath      string
	downloadTimeout time.Duration
	notify          bool

	// exitCode is set by the run and returned from Execute
	exitCode int
)

// rootCmd walks a thread backwards from the given post
var rootCmd = &cobra.Command{
	Use:   "threadgrab <tweetID>",
	Short: "Download the videos of a reply thread, newest post first",
	Long: `threadgrab starts at a post and follows its reply parents toward the
beginning of the thread. Every post whose media (or quoted post's media)
carries an HLS stream is saved as <dest>/<id>.mp4 through ffmpeg.

The walk stops at the start of the thread, after --limit posts, on a
failed lookup, on interrupt, or before the first post whose id is at or
below --stop-at. That boundary post is not downloaded.
A summary with every failed post is printed when it ends.

The API key is taken from --api-key, THREADGRAB_API_KEY or the credential
stored with 'threadgrab auth login', in that order.`,
	Example: `  # Walk the whole thread into ~/Downloads
  threadgrab 1629307668568475652

  # Stop at an id reached by a previous run
  threadgrab 1629307668568475652 --stop-at 1629300000000000000

  # Only the first three posts, saved elsewhere, with debug logs
  threadgrab 1629307668568475652 -l 3 -d ./clips -v`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          postIDArg,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		exitCode = runGrab(cmd, args[0])
		return nil
	},
}

// postIDArg requires exactly one decimal post id
func postIDArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if !tweetid.Valid(args[0]) {
		return fmt.Errorf("invalid post id %q: expected a decimal number", args[0])
	}
	return nil
}

// Execute runs the command tree and returns the process exit code
func Execute() int {
	exitCode = scraper.ExitOK
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err.Error())
		return scraper.ExitFailure
	}
	return exitCode
}

func init() {
	bindFlags(rootCmd)

	rootCmd.SetVersionTemplate(`threadgrab {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// bindFlags registers the grab flags on cmd and resets their variables to
// the defaults
func bindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.threadgrab.yaml or ~/.config/threadgrab/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	cmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "more logging (-v debug, -vv trace)")

	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "bearer token for the status lookup")
	cmd.Flags().StringVarP(&destDir, "dest", "d", "", "directory for downloaded videos (default ~/Downloads)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "stop after this many posts (0 = no limit)")
	cmd.Flags().StringVarP(&stopAt, "stop-at", "s", "", "stop before the first post whose id is at or below this id; that post is not downloaded")
	cmd.Flags().StringVar(&ffmpegPath, "ffmpeg", "", "path to the ffmpeg binary")
	cmd.Flags().DurationVar(&downloadTimeout, "download-timeout", 0, "time limit for a single download (default 5m)")
	cmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
}

// changedFlags collects the flags the user actually set, keyed by flag name
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[name] = value
		}
	}

	set("api-key", apiKey)
	set("dest", destDir)
	set("limit", limit)
	set("stop-at", stopAt)
	set("ffmpeg", ffmpegPath)
	set("download-timeout", downloadTimeout)
	set("notify", notify)
	set("log-level", logLevel)
	set("verbose", verbose)
	return flags
}
