// Package logger provides the structured logging interface used across
// threadgrab.
//
// It wraps zerolog behind a small Logger interface with field support.
// Console output goes to stderr so the run report on stdout stays clean.
// The configured level is lowered one step per -v flag.
//
// Basic Usage:
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	log.WithField("post_id", id).Info("Fetching post")
//
// Tests can capture output with NewTestLogger or silence it with
// NewNopLogger.
package logger
