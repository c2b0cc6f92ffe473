package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	title, message string
	calls          int
	err            error
}

func (f *fakeSender) Send(title, message string) error {
	f.calls++
	f.title, f.message = title, message
	return f.err
}

func TestPrinterUnstyledForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Info("post", "42")
	p.Error("fetch failed", errors.New("404 HTTP error"))
	p.Warning("slow")
	p.Success("done")

	assert.Equal(t, "post: 42\nfetch failed: 404 HTTP error\nslow\ndone\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	sender := &fakeSender{}
	n := NewNotifierWithSender(sender, NewPrinter(&buf))

	assert.NoError(t, n.SendSuccess("threadgrab", "reached the limit"))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "threadgrab", sender.title)
	assert.Equal(t, "reached the limit", sender.message)
	assert.Contains(t, buf.String(), "threadgrab: reached the limit")

	sender.err = errors.New("no notification daemon")
	assert.Error(t, n.SendError("threadgrab", "failed"))
	assert.Equal(t, 2, sender.calls)
}

func TestNotifierDisabled(t *testing.T) {
	n := NewNotifier(false)
	n.printer = NewPrinter(&bytes.Buffer{})
	assert.NoError(t, n.SendSuccess("threadgrab", "done"))
}

func TestEscaping(t *testing.T) {
	assert.Equal(t, `say \"hi\" \\ bye`, appleScriptEscape(`say "hi" \ bye`))
	assert.Equal(t, "a &lt;b&gt; &amp; c", xmlEscape("a <b> & c"))
}

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, false)

	p.PostStarted("300", 0)
	p.NoMedia("300")
	p.PostStarted("250", 1)
	p.DownloadFinished("250", true, "")
	p.PostProcessed("300")
	p.PostStarted("200", 0)
	p.DownloadFinished("200", false, "timeout")
	p.PostProcessed("200")
	p.Complete()

	processed, downloaded, skipped, failed := p.Counts()
	assert.Equal(t, 2, processed)
	assert.Equal(t, 1, downloaded)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, failed)

	out := buf.String()
	assert.Contains(t, out, "post: 300")
	assert.Contains(t, out, "quoted 250")
	assert.Contains(t, out, "250.mp4")
	assert.Contains(t, out, "200 (timeout)")
	assert.Contains(t, out, "2 posts • 1 videos")
}

func TestProgressDisplayQuiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, true)

	p.PostStarted("1", 0)
	p.DownloadFinished("1", true, "")
	p.PostProcessed("1")
	p.Complete()

	assert.Empty(t, buf.String())
	processed, downloaded, _, _ := p.Counts()
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, downloaded)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "3m05s", formatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h01m", formatDuration(2*time.Hour+time.Minute))
}
