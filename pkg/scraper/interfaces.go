package scraper

import (
	"context"

	"threadgrab/internal/downloader"
	"threadgrab/pkg/twitter"
)

// TweetFetcher looks up a single post
type TweetFetcher interface {
	FetchTweet(ctx context.Context, id string) (*twitter.Tweet, error)
}

// Downloader turns a video job into a file and reports how it settled
type Downloader interface {
	Download(ctx context.Context, job downloader.Job) downloader.Result
}

// ExistingChecker reports whether a post's video is already on disk
type ExistingChecker interface {
	IsDownloaded(id string) bool
}

// Observer is told about each step of the walk
type Observer interface {
	PostStarted(id string, depth int)
	NoMedia(id string)
	DownloadFinished(id string, ok bool, reason string)
	PostProcessed(id string)
}

type nopObserver struct{}

func (nopObserver) PostStarted(string, int)               {}
func (nopObserver) NoMedia(string)                        {}
func (nopObserver) DownloadFinished(string, bool, string) {}
func (nopObserver) PostProcessed(string)                  {}
