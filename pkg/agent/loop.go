package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/saraswati/saraswati/pkg/paperrank"
)

const (
	// maxToolRounds bounds how many times the model may request tools
	// before the loop forces final synthesis.
	maxToolRounds = 3

	// paperPoolSize is how many papers fetch_papers pulls internally,
	// regardless of the model's requested max_results, so ranking has
	// enough candidates.
	paperPoolSize = 10

	// shownPapers is how many ranked papers reach the user.
	shownPapers = 3

	// snippetBytes caps the abstract snippet attached to shown papers.
	snippetBytes = 400

	webResultLimit = 3

	temperature = 0.7
)

// Generator is the model-invocation layer the loop drives. *Fallback
// satisfies it; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, request Request) (*Response, error)
}

// Loop is the research-agent state machine: repeated model calls, tool
// execution with mid-stream artifact events, then a final streamed
// synthesis.
type Loop struct {
	generator Generator
	papers    PaperSearcher
	web       WebSearcher
	graph     GraphPersister
	logger    zerolog.Logger
	now       func() time.Time

	specs   []ToolSpec
	schemas map[string]*gojsonschema.Schema
}

// LoopConfig holds loop dependencies. Graph is optional; Now defaults to
// time.Now.
type LoopConfig struct {
	Generator Generator
	Papers    PaperSearcher
	Web       WebSearcher
	Graph     GraphPersister
	Logger    zerolog.Logger
	Now       func() time.Time
}

// NewLoop creates the agent loop.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Papers == nil {
		return nil, fmt.Errorf("paper searcher is required")
	}
	if cfg.Web == nil {
		return nil, fmt.Errorf("web searcher is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	specs := toolSpecs()
	schemas, err := compileToolSchemas(specs)
	if err != nil {
		return nil, err
	}

	return &Loop{
		generator: cfg.Generator,
		papers:    cfg.Papers,
		web:       cfg.Web,
		graph:     cfg.Graph,
		logger:    cfg.Logger,
		now:       cfg.Now,
		specs:     specs,
		schemas:   schemas,
	}, nil
}

// Run drives one research stream. Every stream terminates with exactly one
// done event; an unhandled failure is converted to a single error event
// first. Returns the displayed final text (empty on failure) so callers can
// persist it.
func (l *Loop) Run(ctx context.Context, params RunParams, sink EventSink) string {
	// done is emitted from this deferred path so the client always learns
	// the stream ended, whatever happened above.
	defer func() {
		if err := sink.Emit(Event{Type: EventDone}); err != nil {
			l.logger.Warn().Err(err).Msg("failed to emit done event")
		}
	}()

	text, err := l.run(ctx, params, sink)
	if err != nil {
		l.logger.Error().Err(err).Str("project_id", params.ProjectID).Msg("research agent error")
		l.emit(sink, Event{Type: EventError, Content: "Something went wrong: " + err.Error()})
		return ""
	}
	return text
}

func (l *Loop) run(ctx context.Context, params RunParams, sink EventSink) (string, error) {
	now := l.now()
	system := buildSystemPrompt(params.ActivePaper, now)

	windowed := WindowHistory(params.History)
	turns := make([]Turn, 0, len(windowed)+1)
	turns = append(turns, windowed...)
	turns = append(turns, Turn{Role: RoleUser, Content: params.Message})

	for round := 0; round < maxToolRounds; round++ {
		response, err := l.generator.Generate(ctx, Request{
			Turns:        turns,
			SystemPrompt: system,
			Tools:        l.specs,
			Temperature:  temperature,
		})
		if err != nil {
			return "", err
		}
		if !response.HasToolCalls() {
			break
		}

		turns = append(turns, Turn{
			Role:      RoleAssistant,
			Content:   response.Text,
			ToolCalls: response.ToolCalls,
		})

		// Tools run synchronously in request order so each result stays
		// attributable to its call; the round's results go back to the
		// model as one combined turn.
		results := make([]ToolResult, 0, len(response.ToolCalls))
		for _, call := range response.ToolCalls {
			results = append(results, l.executeTool(ctx, params, call, sink, now))
		}
		turns = append(turns, Turn{Role: RoleTool, ToolResults: results})
	}

	// Final synthesis: base instruction only, no tools. Active-paper
	// context from the tool rounds is deliberately not carried over —
	// current behavior, keeps this call token-light.
	response, err := l.generator.Generate(ctx, Request{
		Turns:        turns,
		SystemPrompt: baseSystemPrompt,
		Temperature:  temperature,
	})
	if err != nil {
		return "", err
	}

	text, chips := extractChips(response.Text)
	for _, line := range strings.Split(text, "\n") {
		if err := sink.Emit(Event{Type: EventText, Content: line + "\n"}); err != nil {
			return "", err
		}
	}
	l.emit(sink, Event{Type: EventSuggestionChips, Chips: chips})

	return text, nil
}

// executeTool validates and dispatches one tool call. Failures degrade to an
// error payload fed back to the model; they never abort the loop.
func (l *Loop) executeTool(ctx context.Context, params RunParams, call ToolCall, sink EventSink, now time.Time) ToolResult {
	result := ToolResult{CallID: call.ID, Name: call.Name}

	schema, known := l.schemas[call.Name]
	if !known {
		result.Payload = map[string]any{"error": "unknown tool: " + call.Name}
		return result
	}
	if err := validateToolArgs(schema, call.Args); err != nil {
		l.logger.Warn().Err(err).Str("tool", call.Name).Msg("rejected tool arguments")
		result.Payload = map[string]any{"error": err.Error()}
		return result
	}

	switch call.Name {
	case toolFetchPapers:
		result.Payload = l.fetchPapers(ctx, params, call.Args, sink, now)
	case toolSearchWeb:
		result.Payload = l.searchWeb(ctx, params, call.Args, sink)
	}
	return result
}

// fetchPapers pulls a wide pool, shows only the ranked best, and hands the
// whole pool to the graph side-channel. The model gets a compact summary of
// the shown papers only.
func (l *Loop) fetchPapers(ctx context.Context, params RunParams, args map[string]any, sink EventSink, now time.Time) map[string]any {
	query := stringArg(args, "query", params.Message)

	l.emit(sink, Event{Type: EventStatus, Content: "🔍 Scanning ArXiv for: " + query})
	pool := paperrank.Deduplicate(l.papers.SearchPapers(ctx, query, paperPoolSize))

	top := paperrank.Rank(pool, query, shownPapers, now)
	l.emit(sink, Event{
		Type:    EventStatus,
		Content: fmt.Sprintf("✅ Selected top %d of %d papers", len(top), len(pool)),
	})

	summary := make([]map[string]any, 0, len(top))
	for _, p := range top {
		p.Credibility = paperrank.AssessCredibility(p, now)
		snippet := p.Abstract
		if len(snippet) > snippetBytes {
			snippet = snippet[:snippetBytes]
		}
		p.AbstractSnippet = snippet

		paper := p
		l.emit(sink, Event{Type: EventPaperArtifact, Paper: &paper})

		year := ""
		if len(p.Published) >= 4 {
			year = p.Published[:4]
		}
		summary = append(summary, map[string]any{"title": p.Title, "year": year})
	}

	// The full fetched pool goes to the graph, not just the shown top.
	if l.graph != nil {
		l.graph.Enqueue(pool, query, params.ProjectID)
	}

	return map[string]any{"papers": summary}
}

// searchWeb returns up to webResultLimit results verbatim to the model.
func (l *Loop) searchWeb(ctx context.Context, params RunParams, args map[string]any, sink EventSink) map[string]any {
	query := stringArg(args, "query", params.Message)

	l.emit(sink, Event{Type: EventStatus, Content: "🌐 Verifying via web: " + query})
	results := l.web.SearchWeb(ctx, query, webResultLimit)

	items := make([]map[string]any, 0, len(results))
	for _, r := range results {
		items = append(items, map[string]any{"title": r.Title, "snippet": r.Snippet, "url": r.URL})
	}
	return map[string]any{"results": items}
}

func (l *Loop) emit(sink EventSink, event Event) {
	if err := sink.Emit(event); err != nil {
		l.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to emit event")
	}
}

// chipPattern matches the trailing [CHIPS: [...]] block the system prompt
// asks for. Pattern extraction is a known fragility; providers with
// structured output should replace it eventually.
var chipPattern = regexp.MustCompile(`(?s)\[CHIPS:\s*(\[.*?\])\]`)

// extractChips splits the model's raw text into displayed text and the
// suggestion chips. A missing or malformed chip block yields the default
// set; the block itself is always stripped from the displayed text.
func extractChips(raw string) (string, []string) {
	m := chipPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return raw, defaultChips
	}

	chips := []string{}
	if err := json.Unmarshal([]byte(raw[m[2]:m[3]]), &chips); err != nil || len(chips) == 0 {
		chips = defaultChips
	}

	return strings.TrimRight(raw[:m[0]], " \t\n"), chips
}
