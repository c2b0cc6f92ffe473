package ledger

import (
	"fmt"
	"io"
	"strings"
)

// Summary describes how a run ended
type Summary struct {
	Message   string
	Processed int
}

// Reporter prints the end-of-run summary
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report writes the termination message, the processed count and, when any
// post failed, the itemized failures. The ledger is only read.
func (r *Reporter) Report(s Summary, l *Ledger) error {
	var b strings.Builder

	fmt.Fprintln(&b, s.Message)
	fmt.Fprintf(&b, "processed: %d\n", s.Processed)

	if l != nil {
		if entries := l.Entries(); len(entries) > 0 {
			fmt.Fprintln(&b, "failed:")
			for _, e := range entries {
				fmt.Fprintf(&b, "  %s (%s)\n", e.ID, e.Reason)
			}
		}
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}
