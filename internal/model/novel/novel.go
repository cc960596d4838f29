package novel

import "time"

// Roles used in the replayed generation context.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Novel is one narrative instance: a premise and the ordered pages
// generated from it so far. Pages are append-only; Finished is sticky.
type Novel struct {
	ID        string    `json:"id"`
	Owner     int64     `json:"owner"`
	Premise   string    `json:"premise"`
	Pages     []string  `json:"pages"`
	Finished  bool      `json:"finished"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is a single prompt/response entry of the generator context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// PageView is what a reader sees for one page: the display chunks plus
// the navigation state the UI needs to render prev/next controls.
type PageView struct {
	NovelID    string   `json:"novelId"`
	Premise    string   `json:"premise"`
	Chunks     []string `json:"chunks"`
	PageNumber int      `json:"pageNumber"`
	TotalPages int      `json:"totalPages"`
	Finished   bool     `json:"finished"`
	HasPrev    bool     `json:"hasPrev"`
	HasNext    bool     `json:"hasNext"`
}

// Summary is the compact listing form used when enumerating a user's novels.
type Summary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PageCount int    `json:"pageCount"`
	Finished  bool   `json:"finished"`
}

// TitleLength bounds Summary titles to a short premise preview.
const TitleLength = 60

// SummaryOf derives the listing entry for a novel.
func SummaryOf(n Novel) Summary {
	title := n.Premise
	if runes := []rune(title); len(runes) > TitleLength {
		title = string(runes[:TitleLength])
	}
	return Summary{
		ID:        n.ID,
		Title:     title,
		PageCount: len(n.Pages),
		Finished:  n.Finished,
	}
}
