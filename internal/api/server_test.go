package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saraswati/saraswati/pkg/agent"
)

type fakeRunner struct {
	params agent.RunParams
	events []agent.Event
	text   string
}

func (f *fakeRunner) Run(_ context.Context, params agent.RunParams, sink agent.EventSink) string {
	f.params = params
	for _, e := range f.events {
		sink.Emit(e)
	}
	sink.Emit(agent.Event{Type: agent.EventDone})
	return f.text
}

type fakeLog struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeLog) Append(_ context.Context, projectID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, projectID+"|"+role+"|"+content)
	return nil
}

func newTestServer(t *testing.T, runner Runner, messages MessageLog) *Server {
	t.Helper()
	s, err := NewServer(Config{
		Port:        8000,
		CORSOrigins: []string{"http://localhost:3000"},
		Runner:      runner,
		Messages:    messages,
		Logger:      zerolog.New(nil).Level(zerolog.Disabled),
	})
	require.NoError(t, err)
	return s
}

func decodeFrames(t *testing.T, body string) []agent.Event {
	t.Helper()
	var events []agent.Event
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		require.True(t, strings.HasPrefix(frame, "data: "), "frame %q", frame)
		var e agent.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &e))
		events = append(events, e)
	}
	return events
}

func TestNewServer(t *testing.T) {
	t.Run("requires runner", func(t *testing.T) {
		_, err := NewServer(Config{Port: 8000})
		assert.Error(t, err)
	})

	t.Run("requires valid port", func(t *testing.T) {
		_, err := NewServer(Config{Runner: &fakeRunner{}})
		assert.Error(t, err)
	})
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeRunner{}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestResearchStream(t *testing.T) {
	runner := &fakeRunner{
		events: []agent.Event{
			{Type: agent.EventStatus, Content: "🔍 Scanning ArXiv for: transformers"},
			{Type: agent.EventText, Content: "Found it.\n"},
			{Type: agent.EventSuggestionChips, Chips: []string{"More"}},
		},
		text: "Found it.",
	}
	log := &fakeLog{}
	s := newTestServer(t, runner, log)

	body := `{
		"project_id": "proj-1",
		"message": "what are transformers?",
		"history": [{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/research", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	events := decodeFrames(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, agent.EventDone, events[len(events)-1].Type)

	t.Run("params forwarded", func(t *testing.T) {
		assert.Equal(t, "proj-1", runner.params.ProjectID)
		assert.Equal(t, "what are transformers?", runner.params.Message)
		require.Len(t, runner.params.History, 2)
		assert.Equal(t, agent.RoleAssistant, runner.params.History[1].Role)
	})

	t.Run("messages persisted", func(t *testing.T) {
		require.Len(t, log.entries, 2)
		assert.Equal(t, "proj-1|user|what are transformers?", log.entries[0])
		assert.Equal(t, "proj-1|assistant|Found it.", log.entries[1])
	})
}

func TestResearchValidation(t *testing.T) {
	s := newTestServer(t, &fakeRunner{}, nil)

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/research", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/research", strings.NewReader(`{"project_id":"p","message":"  "}`))
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/research", strings.NewReader(`{broken`))
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResearchActivePaper(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestServer(t, runner, nil)

	body := `{
		"project_id": "proj-1",
		"message": "explain this paper",
		"active_paper": {"arxiv_id": "1706.03762v7", "title": "Attention Is All You Need"}
	}`
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat/research", strings.NewReader(body)))

	require.NotNil(t, runner.params.ActivePaper)
	assert.Equal(t, "1706.03762v7", runner.params.ActivePaper.ArxivID)
}

func TestGreeting(t *testing.T) {
	s := newTestServer(t, &fakeRunner{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/research/greeting?project_id=p1&project_title=Quantum+Computing", nil)
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	events := decodeFrames(t, rec.Body.String())
	require.NotEmpty(t, events)

	var text strings.Builder
	var chips []string
	for _, e := range events {
		switch e.Type {
		case agent.EventText:
			text.WriteString(e.Content)
		case agent.EventSuggestionChips:
			chips = e.Chips
		}
	}
	assert.Contains(t, text.String(), "Quantum Computing")
	assert.Contains(t, text.String(), "Saraswati")
	assert.Len(t, chips, 4)
	assert.Equal(t, agent.EventDone, events[len(events)-1].Type)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &fakeRunner{}, nil)

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat/research", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
