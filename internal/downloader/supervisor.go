package downloader

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"threadgrab/pkg/errors"
	"threadgrab/pkg/logger"
	"threadgrab/pkg/metadata"
)

// Failure reasons recorded for a post whose download did not succeed
const (
	ReasonTimeout       = "timeout"
	ReasonAlreadyExists = "already exists"
	ReasonInterrupted   = "interrupted"
	ReasonStartFailed   = "failed to start"
)

// Defaults applied when Options leaves a field zero
const (
	DefaultTool               = "ffmpeg"
	DefaultTimeout            = 300 * time.Second
	DefaultCheckpointInterval = 30 * time.Second
	defaultWaitDelay          = 5 * time.Second
)

// State is where a download session is in its lifecycle
type State int

const (
	StateStarting State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job describes one video to fetch
type Job struct {
	PostID string
	URL    string
	Tags   metadata.Tags
}

// Result is how a download settled
type Result struct {
	Job       Job
	SessionID string
	Path      string
	State     State
	Reason    string
	Duration  time.Duration
	// Err is set when the transcoder could not be started
	Err error
}

// Succeeded reports whether the output file was written
func (r Result) Succeeded() bool {
	return r.State == StateSucceeded
}

// FailureRecorder receives a reason for every failed download
type FailureRecorder interface {
	Record(id, reason string)
}

// Storage resolves output paths and learns about finished files
type Storage interface {
	VideoPath(id string) string
	MarkDownloaded(id string)
}

// Options configures a Supervisor
type Options struct {
	Tool               string
	Timeout            time.Duration
	CheckpointInterval time.Duration
}

// Supervisor runs the external transcoder for one job at a time and turns
// everything it does into a single settlement
type Supervisor struct {
	tool       string
	timeout    time.Duration
	checkpoint time.Duration
	storage    Storage
	failures   FailureRecorder
	logger     logger.Logger

	// command builds the child process; tests substitute a helper binary
	command func(name string, args ...string) *exec.Cmd
}

// NewSupervisor creates a supervisor writing into storage and recording
// failures into failures
func NewSupervisor(opts Options, storage Storage, failures FailureRecorder, log logger.Logger) *Supervisor {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Tool == "" {
		opts.Tool = DefaultTool
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = DefaultCheckpointInterval
	}

	return &Supervisor{
		tool:       opts.Tool,
		timeout:    opts.Timeout,
		checkpoint: opts.CheckpointInterval,
		storage:    storage,
		failures:   failures,
		logger:     log,
		command:    exec.Command,
	}
}

// BuildArgs returns the transcoder arguments: input, tags, stream copy and
// the destination path
func BuildArgs(url string, tags metadata.Tags, dest string) []string {
	args := []string{"-i", url}
	args = append(args, tags.Args()...)
	return append(args, "-c", "copy", dest)
}

// session is the mutable state of one Download call. Only the consumer loop
// touches it.
type session struct {
	id      string
	job     Job
	path    string
	started time.Time
	state   State
	reason  string
	pending strings.Builder
	log     logger.Logger
}

// Download runs the transcoder for job and blocks until it settles. It
// returns only after the child process has been reaped.
func (s *Supervisor) Download(ctx context.Context, job Job) Result {
	sess := &session{
		id:      newSessionID(),
		job:     job,
		path:    s.storage.VideoPath(job.PostID),
		started: time.Now(),
		state:   StateStarting,
	}
	sess.log = s.logger.WithFields(map[string]interface{}{
		"session": sess.id,
		"post_id": job.PostID,
	})

	args := BuildArgs(job.URL, job.Tags, sess.path)
	cmd := s.command(s.tool, args...)
	cmd.WaitDelay = defaultWaitDelay

	events := make(chan event, 16)
	done := make(chan struct{})
	cmd.Stderr = &stderrWriter{events: events, done: done}

	// held open and never written, so an overwrite prompt waits for input
	// exactly as it would in a terminal
	if _, err := cmd.StdinPipe(); err != nil {
		close(done)
		return s.fail(sess, err)
	}

	sess.log.DebugWithFields("starting transcoder", map[string]interface{}{
		"tool": s.tool,
		"args": args,
	})

	if err := cmd.Start(); err != nil {
		close(done)
		return s.fail(sess, err)
	}
	sess.state = StateRunning

	exited := make(chan struct{})
	go func() {
		defer close(exited)
		code := exitCode(cmd, cmd.Wait())
		select {
		case events <- event{kind: eventClosed, code: code}:
		case <-done:
		}
	}()

	ticker := time.NewTicker(s.checkpoint)
	timer := time.NewTimer(s.timeout)

	kill := s.run(ctx, sess, events, ticker, timer)

	ticker.Stop()
	timer.Stop()
	close(done)

	if kill {
		if err := cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			sess.log.WithError(err).Warn("failed to kill transcoder")
		}
	}
	<-exited

	s.flush(sess)
	return s.settle(sess)
}

// run is the consumer loop. It returns once the session has settled and
// reports whether the child must be killed.
func (s *Supervisor) run(ctx context.Context, sess *session, events <-chan event, ticker *time.Ticker, timer *time.Timer) bool {
	for {
		select {
		case ev := <-events:
			switch ev.kind {
			case eventOutput:
				sess.pending.WriteString(ev.chunk)
			case eventPrompt:
				sess.state, sess.reason = StateFailed, ReasonAlreadyExists
				return true
			case eventClosed:
				if ev.code == 0 {
					sess.state = StateSucceeded
				} else {
					sess.state, sess.reason = StateFailed, fmt.Sprintf("exit code %d", ev.code)
				}
				return false
			}

		case <-ticker.C:
			sess.log.DebugWithFields("download checkpoint", map[string]interface{}{
				"elapsed": time.Since(sess.started).Round(time.Second),
			})
			s.flush(sess)

		case <-timer.C:
			sess.state, sess.reason = StateFailed, ReasonTimeout
			return true

		case <-ctx.Done():
			sess.state, sess.reason = StateFailed, ReasonInterrupted
			return true
		}
	}
}

// flush hands buffered transcoder output to the debug log
func (s *Supervisor) flush(sess *session) {
	if sess.pending.Len() == 0 {
		return
	}
	sess.log.WithField("output", strings.TrimSpace(sess.pending.String())).Debug("transcoder output")
	sess.pending.Reset()
}

// fail settles a session whose transcoder never ran
func (s *Supervisor) fail(sess *session, err error) Result {
	startErr := &errors.Error{
		Type:    errors.ErrorTypeProcess,
		Message: "starting " + s.tool,
		Err:     err,
	}
	sess.state, sess.reason = StateFailed, ReasonStartFailed
	sess.log.WithError(startErr).Error("could not start transcoder")

	res := s.settle(sess)
	res.Err = startErr
	return res
}

// settle records the outcome. It runs exactly once per session.
func (s *Supervisor) settle(sess *session) Result {
	elapsed := time.Since(sess.started)

	if sess.state == StateSucceeded {
		s.storage.MarkDownloaded(sess.job.PostID)
	} else if s.failures != nil {
		s.failures.Record(sess.job.PostID, sess.reason)
	}

	logger.LogDownload(sess.log, sess.job.PostID, sess.path, sess.reason, elapsed)

	return Result{
		Job:       sess.job,
		SessionID: sess.id,
		Path:      sess.path,
		State:     sess.state,
		Reason:    sess.reason,
		Duration:  elapsed,
	}
}

// exitCode extracts the child's exit status from the Wait error
func exitCode(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
