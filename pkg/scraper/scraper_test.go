package scraper

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadgrab/internal/downloader"
	"threadgrab/pkg/errors"
	"threadgrab/pkg/ledger"
	"threadgrab/pkg/logger"
	"threadgrab/pkg/twitter"
)

// mockStatusServer serves canned posts by id and remembers which ids were
// looked up
type mockStatusServer struct {
	server  *httptest.Server
	mu      sync.Mutex
	posts   map[string]string
	status  map[string]int
	fetched []string
}

func newMockStatusServer(t *testing.T) *mockStatusServer {
	t.Helper()
	m := &mockStatusServer{
		posts:  make(map[string]string),
		status: make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")

		m.mu.Lock()
		m.fetched = append(m.fetched, id)
		body, ok := m.posts[id]
		code := m.status[id]
		m.mu.Unlock()

		if code != 0 {
			w.WriteHeader(code)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(m.server.Close)
	return m
}

// post registers a post. parent, quoted and manifest may be empty.
func (m *mockStatusServer) post(id, parent, quoted, manifest string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	media := `null`
	if manifest != "" {
		media = fmt.Sprintf(`{"media":[{"type":"video","video_info":{"variants":[
			{"bitrate":832000,"content_type":"video/mp4","url":"https://video.example/%s.mp4"},
			{"content_type":"application/x-mpegURL","url":%q}]}}]}`, id, manifest)
	}
	m.posts[id] = fmt.Sprintf(`{
		"id_str": %q,
		"full_text": "post %s",
		"in_reply_to_status_id_str": %s,
		"quoted_status_id_str": %s,
		"user": {"id_str": "7", "name": "Some One", "screen_name": "someone"},
		"extended_entities": %s
	}`, id, id, jsonOrNull(parent), jsonOrNull(quoted), media)
}

func (m *mockStatusServer) fail(id string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[id] = code
}

func (m *mockStatusServer) fetchedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetched...)
}

func jsonOrNull(s string) string {
	if s == "" {
		return "null"
	}
	return fmt.Sprintf("%q", s)
}

// fakeDownloader records jobs and settles them as configured
type fakeDownloader struct {
	mu       sync.Mutex
	jobs     []downloader.Job
	failures *ledger.Ledger
	reasons  map[string]string
	onJob    func(job downloader.Job)
}

func (f *fakeDownloader) Download(ctx context.Context, job downloader.Job) downloader.Result {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	reason := f.reasons[job.PostID]
	hook := f.onJob
	f.mu.Unlock()

	if hook != nil {
		hook(job)
	}
	if ctx.Err() != nil {
		reason = downloader.ReasonInterrupted
	}
	if reason != "" {
		f.failures.Record(job.PostID, reason)
		return downloader.Result{Job: job, State: downloader.StateFailed, Reason: reason}
	}
	return downloader.Result{Job: job, State: downloader.StateSucceeded}
}

func (f *fakeDownloader) postIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, j := range f.jobs {
		ids = append(ids, j.PostID)
	}
	return ids
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) PostStarted(id string, depth int) { r.add(fmt.Sprintf("start %s/%d", id, depth)) }
func (r *recordingObserver) NoMedia(id string)                { r.add("none " + id) }
func (r *recordingObserver) DownloadFinished(id string, ok bool, reason string) {
	r.add(fmt.Sprintf("done %s %v %s", id, ok, reason))
}
func (r *recordingObserver) PostProcessed(id string) { r.add("processed " + id) }

type harness struct {
	server *mockStatusServer
	ledger *ledger.Ledger
	dl     *fakeDownloader
	log    *logger.TestLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	l := ledger.New()
	return &harness{
		server: newMockStatusServer(t),
		ledger: l,
		dl:     &fakeDownloader{failures: l, reasons: map[string]string{}},
		log:    logger.NewTestLogger(),
	}
}

func (h *harness) scraper(opts Options) *Scraper {
	client := twitter.NewClient("test-key", 5*time.Second, h.ledger, logger.NewNopLogger(),
		twitter.WithBaseURL(h.server.server.URL))
	if opts.Logger == nil {
		opts.Logger = h.log
	}
	return New(client, h.dl, opts)
}

// chain builds 300 -> 200 -> 100 where 200 has no video of its own but
// quotes 150, which does
func (h *harness) chain() {
	h.server.post("300", "200", "", "https://video.example/300.m3u8")
	h.server.post("200", "100", "150", "")
	h.server.post("150", "", "", "https://video.example/150.m3u8")
	h.server.post("100", "", "", "https://video.example/100.m3u8")
}

func TestRunWalksToThreadStart(t *testing.T) {
	h := newHarness(t)
	h.chain()
	obs := &recordingObserver{}

	out := h.scraper(Options{Observer: obs}).Run(context.Background(), "300")

	assert.Equal(t, ThreadStart, out.Reason)
	assert.Equal(t, 3, out.Processed)
	assert.Equal(t, "reached the beginning of the thread", out.Message())
	assert.Equal(t, ExitOK, out.ExitCode())

	assert.Equal(t, []string{"300", "200", "150", "100"}, h.server.fetchedIDs())
	assert.Equal(t, []string{"300", "150", "100"}, h.dl.postIDs(), "quoted video is named after the quoted post")
	assert.Equal(t, 0, h.ledger.Len())

	assert.Equal(t, []string{
		"start 300/0", "done 300 true ", "processed 300",
		"start 200/0", "start 150/1", "done 150 true ", "processed 200",
		"start 100/0", "done 100 true ", "processed 100",
	}, obs.events)
}

func TestRunJobCarriesManifestAndTags(t *testing.T) {
	h := newHarness(t)
	h.chain()

	h.scraper(Options{Limit: 2}).Run(context.Background(), "300")

	require.Len(t, h.dl.jobs, 2)
	first := h.dl.jobs[0]
	assert.Equal(t, "https://video.example/300.m3u8", first.URL)
	assert.Equal(t, "post 300", first.Tags.Title)
	assert.Equal(t, "Some One (@someone)", first.Tags.Artist)
	assert.Equal(t, "https://twitter.com/someone/status/300", first.Tags.Comment)

	quoted := h.dl.jobs[1]
	assert.Equal(t, "150", quoted.PostID)
	assert.Equal(t, "post 150", quoted.Tags.Title)
}

func TestRunStopAtBoundary(t *testing.T) {
	tests := []struct {
		name      string
		stopAt    string
		processed int
		fetched   []string
	}{
		{"start at boundary", "300", 0, nil},
		{"boundary at parent", "200", 1, []string{"300"}},
		{"boundary between posts", "250", 1, []string{"300"}},
		{"boundary at root", "100", 2, []string{"300", "200", "150"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.chain()

			out := h.scraper(Options{StopAt: tt.stopAt}).Run(context.Background(), "300")

			assert.Equal(t, BoundaryReached, out.Reason)
			assert.Equal(t, "reached or passed the requested id", out.Message())
			assert.Equal(t, tt.processed, out.Processed)
			assert.Equal(t, tt.fetched, h.server.fetchedIDs())
			assert.Equal(t, ExitOK, out.ExitCode())
		})
	}
}

func TestRunStopAtComparesNumerically(t *testing.T) {
	h := newHarness(t)
	// 99 is numerically below 1000 even though "99" > "1000" as text
	h.server.post("1000", "99", "", "")
	h.server.post("99", "", "", "")

	out := h.scraper(Options{StopAt: "100"}).Run(context.Background(), "1000")

	assert.Equal(t, BoundaryReached, out.Reason)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, []string{"1000"}, h.server.fetchedIDs())
}

func TestRunLimit(t *testing.T) {
	h := newHarness(t)
	h.chain()

	out := h.scraper(Options{Limit: 1}).Run(context.Background(), "300")

	assert.Equal(t, LimitReached, out.Reason)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, "reached the limit", out.Message())
	assert.Equal(t, []string{"300"}, h.server.fetchedIDs())
}

func TestRunPostWithoutMediaStillCounts(t *testing.T) {
	h := newHarness(t)
	h.server.post("20", "10", "", "")
	h.server.post("10", "", "", "")
	obs := &recordingObserver{}

	out := h.scraper(Options{Observer: obs}).Run(context.Background(), "20")

	assert.Equal(t, ThreadStart, out.Reason)
	assert.Equal(t, 2, out.Processed)
	assert.Empty(t, h.dl.jobs)
	assert.Contains(t, obs.events, "none 20")
	assert.Contains(t, obs.events, "none 10")
}

func TestRunQuotedOfQuotedNotFollowed(t *testing.T) {
	h := newHarness(t)
	h.server.post("30", "", "20", "")
	h.server.post("20", "", "10", "")
	h.server.post("10", "", "", "https://video.example/10.m3u8")

	out := h.scraper(Options{}).Run(context.Background(), "30")

	assert.Equal(t, ThreadStart, out.Reason)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, []string{"30", "20"}, h.server.fetchedIDs())
	assert.Empty(t, h.dl.jobs)
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.chain()
	h.server.fail("200", http.StatusNotFound)

	out := h.scraper(Options{}).Run(context.Background(), "300")

	assert.Equal(t, FetchFailed, out.Reason)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, "200", out.LastID)
	assert.Equal(t, "failed to fetch 200: 404 HTTP error", out.Message())
	assert.Equal(t, ExitFailure, out.ExitCode())

	var fe *errors.FetchError
	require.True(t, stderrors.As(out.Err, &fe))
	assert.Equal(t, []ledger.Entry{{ID: "200", Reason: "404 HTTP error"}}, h.ledger.Entries())
	assert.True(t, h.log.HasError())

	fields, ok := h.log.FieldsFor("fetch failed")
	require.True(t, ok)
	assert.Equal(t, "http", fields["error_type"])
	assert.Equal(t, "200", fields["post_id"])
}

func TestRunQuotedFetchFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.chain()
	h.server.fail("150", http.StatusForbidden)

	out := h.scraper(Options{}).Run(context.Background(), "300")

	assert.Equal(t, FetchFailed, out.Reason)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, "150", out.LastID)
	assert.Equal(t, "failed to fetch 150: 403 HTTP error", out.Message())
	assert.Equal(t, []ledger.Entry{{ID: "150", Reason: "403 HTTP error"}}, h.ledger.Entries())
}

func TestRunDownloadFailureDoesNotStopWalk(t *testing.T) {
	h := newHarness(t)
	h.chain()
	h.dl.reasons["300"] = downloader.ReasonAlreadyExists
	h.dl.reasons["150"] = downloader.ReasonTimeout

	out := h.scraper(Options{}).Run(context.Background(), "300")

	assert.Equal(t, ThreadStart, out.Reason)
	assert.Equal(t, 3, out.Processed)
	assert.Equal(t, []ledger.Entry{
		{ID: "150", Reason: "timeout"},
		{ID: "300", Reason: "already exists"},
	}, h.ledger.Entries())
}

func TestRunInterruptedDuringDownload(t *testing.T) {
	h := newHarness(t)
	h.chain()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.dl.onJob = func(job downloader.Job) {
		if job.PostID == "150" {
			cancel()
		}
	}

	out := h.scraper(Options{}).Run(ctx, "300")

	assert.Equal(t, Interrupted, out.Reason)
	assert.Equal(t, 1, out.Processed, "the interrupted post is not counted")
	assert.Equal(t, "interrupted", out.Message())
	assert.Equal(t, ExitInterrupted, out.ExitCode())
	assert.Equal(t, []ledger.Entry{{ID: "150", Reason: "interrupted"}}, h.ledger.Entries())
}

func TestRunInterruptedBeforeStart(t *testing.T) {
	h := newHarness(t)
	h.chain()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := h.scraper(Options{}).Run(ctx, "300")

	assert.Equal(t, Interrupted, out.Reason)
	assert.Equal(t, 0, out.Processed)
	assert.Empty(t, h.server.fetchedIDs())
}

type existingSet map[string]bool

func (e existingSet) IsDownloaded(id string) bool { return e[id] }

func TestRunWarnsAboutExistingVideo(t *testing.T) {
	h := newHarness(t)
	h.server.post("5", "", "", "https://video.example/5.m3u8")

	h.scraper(Options{Existing: existingSet{"5": true}}).Run(context.Background(), "5")

	assert.NotEmpty(t, h.log.GetMessagesByLevel("WARN"))
	assert.Equal(t, []string{"5"}, h.dl.postIDs(), "the download is still attempted")
}

func TestRunPartialUserWritesUntagged(t *testing.T) {
	h := newHarness(t)
	h.server.mu.Lock()
	h.server.posts["8"] = `{"id_str":"8","full_text":"x","user":{"id_str":"1"},
		"extended_entities":{"media":[{"video_info":{"variants":[
		{"content_type":"application/x-mpegURL","url":"https://video.example/8.m3u8"}]}}]}}`
	h.server.mu.Unlock()

	h.scraper(Options{}).Run(context.Background(), "8")

	require.Len(t, h.dl.jobs, 1)
	assert.True(t, h.dl.jobs[0].Tags.IsZero())
}

func TestOutcomeMessages(t *testing.T) {
	transport := &errors.TransportError{PostID: "9", Err: fmt.Errorf("connection refused")}

	tests := []struct {
		out  Outcome
		msg  string
		code int
	}{
		{Outcome{Reason: BoundaryReached}, "reached or passed the requested id", 0},
		{Outcome{Reason: LimitReached}, "reached the limit", 0},
		{Outcome{Reason: ThreadStart}, "reached the beginning of the thread", 0},
		{Outcome{Reason: FetchFailed, LastID: "9", Err: transport}, "failed to fetch 9: connection refused", 1},
		{Outcome{Reason: Interrupted}, "interrupted", 130},
	}

	for _, tt := range tests {
		t.Run(tt.out.Reason.String(), func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.out.Message())
			assert.Equal(t, tt.code, tt.out.ExitCode())
		})
	}
}
