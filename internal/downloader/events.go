package downloader

import "strings"

// OverwritePrompt is the text ffmpeg prints before waiting for a y/N answer
// when the output file already exists
const OverwritePrompt = "already exists. Overwrite?"

type eventKind int

const (
	eventOutput eventKind = iota
	eventPrompt
	eventClosed
)

// event is everything the consumer loop learns about the child process
type event struct {
	kind  eventKind
	chunk string
	code  int
}

// stderrWriter forwards each chunk the child writes to the consumer loop.
// It keeps the tail of the previous chunk so a prompt split across two
// writes is still recognized. Writes never block once done is closed.
type stderrWriter struct {
	events   chan<- event
	done     <-chan struct{}
	tail     string
	prompted bool
}

func (w *stderrWriter) Write(p []byte) (int, error) {
	chunk := string(p)
	w.post(event{kind: eventOutput, chunk: chunk})

	if !w.prompted {
		window := w.tail + chunk
		if strings.Contains(window, OverwritePrompt) {
			w.prompted = true
			w.post(event{kind: eventPrompt})
		}
		if keep := len(OverwritePrompt) - 1; len(window) > keep {
			window = window[len(window)-keep:]
		}
		w.tail = window
	}

	return len(p), nil
}

func (w *stderrWriter) post(ev event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}
