package novel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	novelModel "github.com/nennneko5787/novelist-ai/internal/model/novel"
	novelservice "github.com/nennneko5787/novelist-ai/internal/service/novel"
	"github.com/nennneko5787/novelist-ai/internal/storage/memory"
)

// scriptedGenerator returns canned pages in call order.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	calls   int
	entered chan struct{}
	gate    chan struct{}
}

func (g *scriptedGenerator) Generate(_ context.Context, _ []novelModel.Turn, _ string) (string, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	idx := call - 1
	if idx >= len(g.replies) {
		idx = len(g.replies) - 1
	}
	var reply string
	if idx >= 0 {
		reply = g.replies[idx]
	}
	entered, gate := g.entered, g.gate
	g.mu.Unlock()

	if entered != nil && call == 1 {
		close(entered)
	}
	if gate != nil {
		<-gate
	}

	if reply == "" {
		return "", errors.New("no scripted reply")
	}
	return reply, nil
}

func setupRouter(gen *scriptedGenerator) (*chi.Mux, *memory.Store) {
	store := memory.NewStore()
	engine := novelservice.NewEngine(store, gen, novelservice.Config{})
	handler := New(engine)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func seedNovel(t *testing.T, store *memory.Store, pages []string, finished bool) novelModel.Novel {
	t.Helper()
	n := novelModel.Novel{ID: "abcDEF123456", Owner: 42, Premise: "P", Pages: pages, Finished: finished}
	if err := store.Create(context.Background(), n); err != nil {
		t.Fatalf("seed err: %v", err)
	}
	return n
}

func decodeView(t *testing.T, body *bytes.Buffer) novelModel.PageView {
	t.Helper()
	var view novelModel.PageView
	if err := json.NewDecoder(body).Decode(&view); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	return view
}

func TestCreateNovelEndpoint(t *testing.T) {
	r, _ := setupRouter(&scriptedGenerator{replies: []string{"Page 1 text"}})

	payload, _ := json.Marshal(map[string]any{"premise": "P", "owner": 42})
	req := httptest.NewRequest(http.MethodPost, "/novels", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	view := decodeView(t, resp.Body)
	if view.PageNumber != 1 || view.TotalPages != 1 {
		t.Fatalf("unexpected numbering: %d/%d", view.PageNumber, view.TotalPages)
	}
	if len(view.NovelID) != novelModel.IDLength {
		t.Fatalf("unexpected id %q", view.NovelID)
	}
}

func TestCreateNovelEndpointInvalidBody(t *testing.T) {
	r, _ := setupRouter(&scriptedGenerator{replies: []string{"x"}})

	req := httptest.NewRequest(http.MethodPost, "/novels", strings.NewReader("{"))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateNovelEndpointMissingPremise(t *testing.T) {
	r, _ := setupRouter(&scriptedGenerator{replies: []string{"x"}})

	payload, _ := json.Marshal(map[string]any{"owner": 42})
	req := httptest.NewRequest(http.MethodPost, "/novels", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestRecallEndpoint(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{})
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID, nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	view := decodeView(t, resp.Body)
	if view.PageNumber != 1 || strings.Join(view.Chunks, "") != "Page 1 text" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestRecallEndpointUnknownNovel(t *testing.T) {
	r, _ := setupRouter(&scriptedGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/novels/nope00000000", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestPageEndpointGeneratesFrontier(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{replies: []string{"Page 2 text"}})
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID+"/pages/1", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	view := decodeView(t, resp.Body)
	if view.PageNumber != 2 || view.TotalPages != 2 {
		t.Fatalf("unexpected numbering: %d/%d", view.PageNumber, view.TotalPages)
	}
}

func TestPageEndpointOutOfRange(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{})
	n := seedNovel(t, store, []string{"Page 1 text"}, true)

	req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID+"/pages/1", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestPageEndpointBadIndex(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{})
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID+"/pages/abc", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestNavigateEndpoint(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{replies: []string{"Page 2 text"}})
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	payload, _ := json.Marshal(map[string]any{"direction": "next", "currentPage": 0})
	req := httptest.NewRequest(http.MethodPost, "/novels/"+n.ID+"/navigate", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	view := decodeView(t, resp.Body)
	if view.PageNumber != 2 {
		t.Fatalf("unexpected page number %d", view.PageNumber)
	}
}

func TestNavigateEndpointBadDirection(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{})
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	payload, _ := json.Marshal(map[string]any{"direction": "sideways", "currentPage": 0})
	req := httptest.NewRequest(http.MethodPost, "/novels/"+n.ID+"/navigate", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestNavigateEndpointPrevFromFirstPage(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{})
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	payload, _ := json.Marshal(map[string]any{"direction": "prev", "currentPage": 0})
	req := httptest.NewRequest(http.MethodPost, "/novels/"+n.ID+"/navigate", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestListEndpoint(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{})
	seedNovel(t, store, []string{"Page 1 text"}, false)

	req := httptest.NewRequest(http.MethodGet, "/novels?owner=42", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var summaries []novelModel.Summary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(summaries) != 1 || summaries[0].PageCount != 1 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
}

func TestListEndpointRequiresOwner(t *testing.T) {
	r, _ := setupRouter(&scriptedGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/novels", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestConcurrentFrontierRequestsReturnConflict(t *testing.T) {
	gen := &scriptedGenerator{
		replies: []string{"Page 2 text"},
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	r, store := setupRouter(gen)
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	firstDone := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID+"/pages/1", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		firstDone <- resp.Code
	}()

	select {
	case <-gen.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first generation never started")
	}

	req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID+"/pages/1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 while generation is in flight, got %d", resp.Code)
	}

	close(gen.gate)
	if code := <-firstDone; code != http.StatusOK {
		t.Fatalf("first request failed with %d", code)
	}
}

func TestStreamEndpoint(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{replies: []string{"Page 2 text"}})
	n := seedNovel(t, store, []string{"Page 1 text"}, false)

	req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID+"/stream", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := resp.Body.String()
	for _, event := range []string{"event: start", "event: page", "event: end"} {
		if !strings.Contains(body, event) {
			t.Fatalf("missing %q in stream body:\n%s", event, body)
		}
	}
	if !strings.Contains(body, "Page 2 text") {
		t.Fatalf("generated page missing from stream body:\n%s", body)
	}
}

func TestStreamEndpointFinishedNovel(t *testing.T) {
	r, store := setupRouter(&scriptedGenerator{})
	n := seedNovel(t, store, []string{"Page 1 text"}, true)

	req := httptest.NewRequest(http.MethodGet, "/novels/"+n.ID+"/stream", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	body := resp.Body.String()
	if !strings.Contains(body, "event: error") || !strings.Contains(body, "no more pages") {
		t.Fatalf("expected error event for finished novel, got:\n%s", body)
	}
}
