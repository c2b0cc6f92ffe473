package scraper

import (
	"context"

	"threadgrab/internal/downloader"
	"threadgrab/pkg/errors"
	"threadgrab/pkg/logger"
	"threadgrab/pkg/media"
	"threadgrab/pkg/metadata"
	"threadgrab/pkg/tweetid"
	"threadgrab/pkg/twitter"
)

// Options bounds and instruments a walk
type Options struct {
	// Limit stops the walk after this many processed posts. Zero is unbounded.
	Limit int
	// StopAt stops the walk at the first post whose id is at or below it
	StopAt string

	Observer Observer
	Existing ExistingChecker
	Logger   logger.Logger
}

// Scraper walks a reply chain backwards, downloading the video attached to
// each post or to the post it quotes
type Scraper struct {
	fetcher    TweetFetcher
	downloader Downloader
	opts       Options
	observer   Observer
	logger     logger.Logger
}

// New creates a Scraper
func New(fetcher TweetFetcher, dl Downloader, opts Options) *Scraper {
	s := &Scraper{
		fetcher:    fetcher,
		downloader: dl,
		opts:       opts,
		observer:   opts.Observer,
		logger:     opts.Logger,
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.logger == nil {
		s.logger = logger.GetLogger()
	}
	return s
}

// walk is the per-run traversal state
type walk struct {
	current   string
	processed int
}

// Run walks from startID toward the beginning of the thread until a stop
// condition is met. Posts are handled strictly one at a time.
func (s *Scraper) Run(ctx context.Context, startID string) Outcome {
	w := &walk{current: startID}

	logger.LogComponentStart(s.logger, "walker", map[string]interface{}{
		"start":   startID,
		"limit":   s.opts.Limit,
		"stop_at": s.opts.StopAt,
	})

	out := s.loop(ctx, w)

	logger.LogComponentStop(s.logger, "walker", out.Reason.String())
	s.logger.InfoWithFields("walk finished", map[string]interface{}{
		"reason":    out.Reason.String(),
		"processed": out.Processed,
		"last_id":   out.LastID,
	})
	return out
}

func (s *Scraper) loop(ctx context.Context, w *walk) Outcome {
	for {
		if ctx.Err() != nil {
			return w.outcome(Interrupted, nil)
		}

		if s.opts.StopAt != "" && tweetid.AtOrBelow(w.current, s.opts.StopAt) {
			return w.outcome(BoundaryReached, nil)
		}

		log := s.logger.WithField("post_id", w.current)
		s.observer.PostStarted(w.current, 0)

		tweet, err := s.fetcher.FetchTweet(ctx, w.current)
		if err != nil {
			return s.fetchFailed(ctx, w, w.current, err)
		}

		source, variant, ok, failedID, err := s.resolve(ctx, tweet)
		if err != nil {
			return s.fetchFailed(ctx, w, failedID, err)
		}

		if ok {
			if interrupted := s.download(ctx, source, variant); interrupted {
				return w.outcome(Interrupted, nil)
			}
		} else {
			log.Debug("no usable video")
			s.observer.NoMedia(w.current)
		}

		w.processed++
		s.observer.PostProcessed(w.current)

		if s.opts.Limit > 0 && w.processed >= s.opts.Limit {
			return w.outcome(LimitReached, nil)
		}

		if !tweet.IsReply() {
			return w.outcome(ThreadStart, nil)
		}

		log.Trace("following reply parent")
		w.current = tweet.InReplyToStatusIDStr
	}
}

// resolve finds the video for a post, looking one level into a quoted post
// when the post itself has none. It returns the post the video belongs to.
func (s *Scraper) resolve(ctx context.Context, t *twitter.Tweet) (source *twitter.Tweet, variant twitter.Variant, ok bool, failedID string, err error) {
	if v, found := media.SelectVariant(t.ExtendedEntities); found {
		return t, v, true, "", nil
	}
	if t.QuotedStatusIDStr == "" {
		return nil, twitter.Variant{}, false, "", nil
	}

	quotedID := t.QuotedStatusIDStr
	s.observer.PostStarted(quotedID, 1)
	s.logger.DebugWithFields("looking into quoted post", map[string]interface{}{
		"post_id": t.IDStr,
		"quoted":  quotedID,
	})

	quoted, err := s.fetcher.FetchTweet(ctx, quotedID)
	if err != nil {
		return nil, twitter.Variant{}, false, quotedID, err
	}

	// quoted-of-quoted is not followed
	if v, found := media.SelectVariant(quoted.ExtendedEntities); found {
		return quoted, v, true, "", nil
	}
	return nil, twitter.Variant{}, false, "", nil
}

// download hands a job to the downloader and reports whether the run was
// interrupted while it ran. Any other failure is already in the ledger and
// the walk moves on.
func (s *Scraper) download(ctx context.Context, source *twitter.Tweet, variant twitter.Variant) bool {
	job := downloader.Job{PostID: source.IDStr, URL: variant.URL}
	if tags, ok := metadata.FromTweet(source); ok {
		job.Tags = tags
	}

	if s.opts.Existing != nil && s.opts.Existing.IsDownloaded(job.PostID) {
		s.logger.WithField("post_id", job.PostID).Warn("video already present, the transcoder will refuse to overwrite it")
	}

	res := s.downloader.Download(ctx, job)
	s.observer.DownloadFinished(job.PostID, res.Succeeded(), res.Reason)

	return res.Reason == downloader.ReasonInterrupted || ctx.Err() != nil
}

func (s *Scraper) fetchFailed(ctx context.Context, w *walk, id string, err error) Outcome {
	if ctx.Err() != nil {
		return w.outcome(Interrupted, nil)
	}
	s.logger.WithError(err).WithFields(map[string]interface{}{
		"post_id":    id,
		"error_type": string(errors.TypeOf(err)),
	}).Error("fetch failed")
	out := w.outcome(FetchFailed, err)
	out.LastID = id
	return out
}

func (w *walk) outcome(r Reason, err error) Outcome {
	return Outcome{Reason: r, Processed: w.processed, LastID: w.current, Err: err}
}
