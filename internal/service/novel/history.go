package novel

import "github.com/nennneko5787/novelist-ai/internal/model/novel"

// BuildContext reconstructs the exact conversation the generator saw when
// it produced the stored pages: the premise prompts page 0, and every
// later page answers the fixed continue prompt. The generator is
// stateless across calls, so this replay is resupplied on every request.
func BuildContext(premise string, pages []string) []novel.Turn {
	turns := make([]novel.Turn, 0, len(pages)*2)
	for i, page := range pages {
		prompt := premise
		if i > 0 {
			prompt = ContinuePrompt
		}
		turns = append(turns,
			novel.Turn{Role: novel.RoleUser, Text: prompt},
			novel.Turn{Role: novel.RoleModel, Text: page},
		)
	}
	return turns
}
