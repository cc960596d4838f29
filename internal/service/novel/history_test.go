package novel_test

import (
	"testing"

	novelmodel "github.com/nennneko5787/novelist-ai/internal/model/novel"
	novelservice "github.com/nennneko5787/novelist-ai/internal/service/novel"
)

func TestBuildContextEmpty(t *testing.T) {
	if turns := novelservice.BuildContext("P", nil); len(turns) != 0 {
		t.Fatalf("expected no turns without pages, got %d", len(turns))
	}
}

func TestBuildContextPairsPremiseWithFirstPage(t *testing.T) {
	turns := novelservice.BuildContext("P", []string{"page one"})

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != novelmodel.RoleUser || turns[0].Text != "P" {
		t.Fatalf("unexpected user turn %+v", turns[0])
	}
	if turns[1].Role != novelmodel.RoleModel || turns[1].Text != "page one" {
		t.Fatalf("unexpected model turn %+v", turns[1])
	}
}

func TestBuildContextUsesContinuePromptForLaterPages(t *testing.T) {
	pages := []string{"page one", "page two", "page three"}
	turns := novelservice.BuildContext("P", pages)

	if len(turns) != 6 {
		t.Fatalf("expected 6 turns, got %d", len(turns))
	}

	for i, page := range pages {
		user := turns[i*2]
		model := turns[i*2+1]

		wantPrompt := "P"
		if i > 0 {
			wantPrompt = novelservice.ContinuePrompt
		}
		if user.Role != novelmodel.RoleUser || user.Text != wantPrompt {
			t.Fatalf("turn %d: unexpected user turn %+v", i, user)
		}
		if model.Role != novelmodel.RoleModel || model.Text != page {
			t.Fatalf("turn %d: unexpected model turn %+v", i, model)
		}
	}
}
