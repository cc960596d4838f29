package novel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nennneko5787/novelist-ai/internal/model/novel"
)

// Generator produces the next page of narrative given the replayed
// conversation so far. The call is stateless: history must carry every
// prior turn.
type Generator interface {
	Generate(ctx context.Context, history []novel.Turn, prompt string) (string, error)
}

// StreamingGenerator additionally delivers the page incrementally. The
// returned text is the complete page; onDelta observes fragments as they
// arrive.
type StreamingGenerator interface {
	Generator
	GenerateStream(ctx context.Context, history []novel.Turn, prompt string, onDelta func(string)) (string, error)
}

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	// ChunkSize bounds display chunks (DefaultChunkSize when <= 0).
	ChunkSize int
	// CreateAttempts bounds id-collision retries at creation (default 3).
	CreateAttempts int
}

const defaultCreateAttempts = 3

// Engine is the page-request state machine: it decides, per novel and
// requested page index, whether to serve a stored page, run exactly one
// generation, or reject the request.
type Engine struct {
	store          novel.Store
	generator      Generator
	guard          *generationGuard
	chunkSize      int
	createAttempts int
}

// NewEngine wires the engine to its store and generator collaborators.
func NewEngine(store novel.Store, generator Generator, cfg Config) *Engine {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	attempts := cfg.CreateAttempts
	if attempts <= 0 {
		attempts = defaultCreateAttempts
	}
	return &Engine{
		store:          store,
		generator:      generator,
		guard:          newGenerationGuard(),
		chunkSize:      chunkSize,
		createAttempts: attempts,
	}
}

// CreateNovel runs the opening generation for a premise and persists the
// new record. The first page is stored even when the model concludes the
// story immediately.
func (e *Engine) CreateNovel(ctx context.Context, premise string, owner int64) (novel.PageView, error) {
	if strings.TrimSpace(premise) == "" {
		return novel.PageView{}, novel.ErrPremiseRequired
	}

	text, err := e.generator.Generate(ctx, nil, premise)
	if err != nil {
		return novel.PageView{}, fmt.Errorf("%w: %v", novel.ErrGenerationFailed, err)
	}

	clean, finished := DetectEnd(text)
	n := novel.Novel{
		Owner:     owner,
		Premise:   premise,
		Pages:     []string{clean},
		Finished:  finished,
		CreatedAt: time.Now().UTC(),
	}

	for attempt := 1; ; attempt++ {
		n.ID = novel.NewID()
		err = e.store.Create(ctx, n)
		if err == nil {
			break
		}
		if !errors.Is(err, novel.ErrNovelExists) || attempt >= e.createAttempts {
			return novel.PageView{}, fmt.Errorf("%w: %v", novel.ErrGenerationFailed, err)
		}
		log.Printf("[engine] id collision on create, retrying (attempt %d)", attempt)
	}

	log.Printf("[engine] created novel %s for owner %d, finished=%v", n.ID, owner, n.Finished)
	return e.pageView(n, 0, 1), nil
}

// RequestPage serves the page at the 0-based index, generating it first
// when the request hits the frontier of an unfinished novel. At most one
// generation per novel runs at a time; a losing concurrent request gets
// ErrGenerationBusy and must be retried by the caller.
func (e *Engine) RequestPage(ctx context.Context, id string, page int) (novel.PageView, error) {
	if page < 0 {
		return novel.PageView{}, novel.ErrPageOutOfRange
	}

	n, err := e.store.Get(ctx, id)
	if err != nil {
		return novel.PageView{}, err
	}

	wasFrontier := false
	if page == len(n.Pages) && !n.Finished {
		if !e.guard.tryAcquire(id) {
			return novel.PageView{}, novel.ErrGenerationBusy
		}
		n, err = e.generateFrontier(ctx, id, page, nil)
		if err != nil {
			return novel.PageView{}, err
		}
		wasFrontier = true
	}

	if page >= len(n.Pages) {
		return novel.PageView{}, novel.ErrPageOutOfRange
	}

	total := len(n.Pages)
	if wasFrontier && !n.Finished {
		// Reveal no more pages than the reader has seen exist.
		total = page + 1
	}
	return e.pageView(n, page, total), nil
}

// StreamFrontier generates the next page of an unfinished novel, feeding
// fragments to onDelta as they arrive. When the model concludes the story
// instead of producing a page, the view of the final stored page is
// returned with Finished set.
func (e *Engine) StreamFrontier(ctx context.Context, id string, onDelta func(string)) (novel.PageView, error) {
	n, err := e.store.Get(ctx, id)
	if err != nil {
		return novel.PageView{}, err
	}
	if n.Finished {
		return novel.PageView{}, novel.ErrPageOutOfRange
	}

	page := len(n.Pages)
	if !e.guard.tryAcquire(id) {
		return novel.PageView{}, novel.ErrGenerationBusy
	}
	n, err = e.generateFrontier(ctx, id, page, onDelta)
	if err != nil {
		return novel.PageView{}, err
	}

	if page >= len(n.Pages) {
		// Terminal response discarded; land the reader on the last page.
		page = len(n.Pages) - 1
	}
	total := len(n.Pages)
	if !n.Finished {
		total = page + 1
	}
	return e.pageView(n, page, total), nil
}

// ListByOwner enumerates a user's novels in compact form.
func (e *Engine) ListByOwner(ctx context.Context, owner int64) ([]novel.Summary, error) {
	novels, err := e.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	summaries := make([]novel.Summary, 0, len(novels))
	for _, n := range novels {
		summaries = append(summaries, novel.SummaryOf(n))
	}
	return summaries, nil
}

// generateFrontier runs one guarded generate-and-persist sequence. The
// caller must hold the guard for id; it is released on every exit path.
// The record is reloaded under the guard so a generation that completed
// between the caller's read and the acquire is never repeated.
func (e *Engine) generateFrontier(ctx context.Context, id string, page int, onDelta func(string)) (novel.Novel, error) {
	defer e.guard.release(id)

	n, err := e.store.Get(ctx, id)
	if err != nil {
		return novel.Novel{}, err
	}
	if page != len(n.Pages) || n.Finished {
		// Another request already produced this page or ended the story.
		return n, nil
	}

	history := BuildContext(n.Premise, n.Pages)
	text, err := e.generate(ctx, history, ContinuePrompt, onDelta)
	if err != nil {
		return novel.Novel{}, fmt.Errorf("%w: %v", novel.ErrGenerationFailed, err)
	}

	clean, done := DetectEnd(text)
	if done {
		// The marker response itself is not narrative; record only the flag.
		n.Finished = true
	} else {
		n.Pages = append(n.Pages, clean)
	}

	if err := e.store.Update(ctx, id, n.Pages, n.Finished); err != nil {
		return novel.Novel{}, fmt.Errorf("%w: %v", novel.ErrGenerationFailed, err)
	}

	log.Printf("[engine] novel %s now has %d pages, finished=%v", id, len(n.Pages), n.Finished)
	return n, nil
}

func (e *Engine) generate(ctx context.Context, history []novel.Turn, prompt string, onDelta func(string)) (string, error) {
	if onDelta != nil {
		if sg, ok := e.generator.(StreamingGenerator); ok {
			return sg.GenerateStream(ctx, history, prompt, onDelta)
		}
	}
	return e.generator.Generate(ctx, history, prompt)
}

func (e *Engine) pageView(n novel.Novel, page, total int) novel.PageView {
	return novel.PageView{
		NovelID:    n.ID,
		Premise:    n.Premise,
		Chunks:     SplitChunks(n.Pages[page], e.chunkSize),
		PageNumber: page + 1,
		TotalPages: total,
		Finished:   n.Finished,
		HasPrev:    page > 0,
		HasNext:    !(page == len(n.Pages)-1 && n.Finished),
	}
}
