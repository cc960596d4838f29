package novel

import "errors"

var (
	// ErrNovelNotFound means the id has no stored record.
	ErrNovelNotFound = errors.New("novel not found")

	// ErrNovelExists means a create collided with an existing id.
	ErrNovelExists = errors.New("novel id already exists")

	// ErrPremiseRequired rejects creation without an initial prompt.
	ErrPremiseRequired = errors.New("premise is required")

	// ErrGenerationBusy means another request is already generating the
	// frontier page of this novel.
	ErrGenerationBusy = errors.New("generation already in progress")

	// ErrPageOutOfRange means the requested page is beyond anything
	// generation can produce for this novel.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrGenerationFailed wraps generator or persistence failures during
	// the generate path; no partial page is stored when it is returned.
	ErrGenerationFailed = errors.New("generation failed")
)
