// Package downloader supervises the external transcoder that turns a
// streaming manifest into <dest>/<postID>.mp4.
//
// Each Download call is a small state machine. One loop consumes process
// output, the overwrite prompt, process exit, a checkpoint ticker, an
// absolute timeout and context cancellation, and settles exactly once.
package downloader
