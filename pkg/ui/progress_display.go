package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay prints one line per step of the thread walk
type ProgressDisplay struct {
	mu         sync.Mutex
	printer    *Printer
	startTime  time.Time
	processed  int
	downloaded int
	skipped    int
	failed     int
	quiet      bool
}

// NewProgressDisplay creates a progress display writing to w. A quiet
// display only counts.
func NewProgressDisplay(w io.Writer, quiet bool) *ProgressDisplay {
	return &ProgressDisplay{
		printer:   NewPrinter(w),
		startTime: time.Now(),
		quiet:     quiet,
	}
}

// PostStarted marks the start of work on a post. depth is 1 for a quoted
// post.
func (p *ProgressDisplay) PostStarted(id string, depth int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.quiet {
		return
	}
	if depth > 0 {
		p.printer.Dim(fmt.Sprintf("%s↳ quoted %s", strings.Repeat("  ", depth), id))
		return
	}
	p.printer.Info("post", id)
}

// NoMedia notes a post that had nothing to download
func (p *ProgressDisplay) NoMedia(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.skipped++
	if !p.quiet {
		p.printer.Dim(fmt.Sprintf("  – no video in %s", id))
	}
}

// DownloadFinished records how a download settled
func (p *ProgressDisplay) DownloadFinished(id string, ok bool, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ok {
		p.downloaded++
		if !p.quiet {
			p.printer.Success(fmt.Sprintf("  ✓ %s.mp4", id))
		}
		return
	}

	p.failed++
	if !p.quiet {
		p.printer.Warning(fmt.Sprintf("  ✗ %s (%s)", id, reason))
	}
}

// PostProcessed counts a fully evaluated post
func (p *ProgressDisplay) PostProcessed(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
}

// Complete prints the closing statistics line
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.quiet {
		return
	}
	p.printer.Highlight(fmt.Sprintf("%d posts • %d videos • %d without video • %d failed • %s",
		p.processed, p.downloaded, p.skipped, p.failed, formatDuration(time.Since(p.startTime))))
}

// Counts returns processed, downloaded, skipped and failed totals
func (p *ProgressDisplay) Counts() (processed, downloaded, skipped, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.downloaded, p.skipped, p.failed
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
