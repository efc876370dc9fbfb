package agent

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// EventSink receives outbound events in emission order. Implementations
// must write each event through immediately; the client renders
// incrementally.
type EventSink interface {
	Emit(event Event) error
}

// SSEEmitter serializes events as server-sent-event frames
// (`data: <json>\n\n`) and flushes after every write when the underlying
// writer supports it.
type SSEEmitter struct {
	w       io.Writer
	flusher http.Flusher
}

// NewSSEEmitter wraps a response writer. Unbuffered: every Emit reaches the
// wire before returning.
func NewSSEEmitter(w io.Writer) *SSEEmitter {
	e := &SSEEmitter{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Emit writes one event frame.
func (e *SSEEmitter) Emit(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
