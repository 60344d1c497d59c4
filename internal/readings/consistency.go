package readings

import (
	"fmt"

	"github.com/mrlokans/readtrack/internal/apperr"
	"github.com/mrlokans/readtrack/internal/entities"
)

const (
	MsgUserNotFound      = "User does not exist"
	MsgBookNotLogged     = "User has not logged this book"
	MsgRatingIncomplete  = "Request body must contain rating."
	MsgInvalidPageCount  = "pagecount must not be negative"
	MsgInvalidMaxPages   = "maxpagecount must be greater than zero"
	MsgInvalidRecord     = "Reading record is invalid"
	msgInvalidStatusTmpl = "reading_status must be one of %q, %q"
)

// CreateInput carries the fields needed to log a new book. Pointers
// distinguish an absent field from a zero value.
type CreateInput struct {
	Title        *string
	Author       *string
	Description  *string
	MaxPageCount *int
}

// Validate reports the first missing or malformed field.
func (in CreateInput) Validate() error {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"title", in.Title},
		{"author", in.Author},
		{"description", in.Description},
	} {
		if f.value == nil {
			return apperr.MissingField(f.name)
		}
	}
	if in.MaxPageCount == nil {
		return apperr.MissingField("page count")
	}
	if *in.MaxPageCount <= 0 {
		return apperr.Validation(MsgInvalidMaxPages)
	}
	return nil
}

// RatingInput is the rating half of an update. Every field is required.
type RatingInput struct {
	Rating        *int
	Plot          *int
	Prose         *int
	Characters    *int
	Worldbuilding *int
	Theme         *int
	Content       *string
}

// Validate fails unless the whole rating set is present.
func (in RatingInput) Validate() error {
	if in.Rating == nil || in.Plot == nil || in.Prose == nil || in.Characters == nil ||
		in.Worldbuilding == nil || in.Theme == nil || in.Content == nil {
		return apperr.Validation(MsgRatingIncomplete)
	}
	return nil
}

// Apply copies the rating set onto r. Call Validate first.
func (in RatingInput) Apply(r *entities.Rating) {
	r.Rating = *in.Rating
	r.Plot = *in.Plot
	r.Prose = *in.Prose
	r.Characters = *in.Characters
	r.Worldbuilding = *in.Worldbuilding
	r.Theme = *in.Theme
	r.Content = *in.Content
}

// ProgressInput is the progress half of an update. Absent fields keep their
// stored values.
type ProgressInput struct {
	PageCount     *int
	MaxPageCount  *int
	ReadingStatus *entities.ReadingStatus
}

func (in ProgressInput) Validate() error {
	if in.PageCount != nil && *in.PageCount < 0 {
		return apperr.Validation(MsgInvalidPageCount)
	}
	if in.MaxPageCount != nil && *in.MaxPageCount <= 0 {
		return apperr.Validation(MsgInvalidMaxPages)
	}
	if in.ReadingStatus != nil && !in.ReadingStatus.Valid() {
		return apperr.Validation(fmt.Sprintf(msgInvalidStatusTmpl,
			entities.ReadingStatusInProgress, entities.ReadingStatusCompleted))
	}
	return nil
}

// UpdateInput is a full PATCH payload.
type UpdateInput struct {
	Rating   RatingInput
	Progress ProgressInput
}

func (in UpdateInput) Validate() error {
	if err := in.Rating.Validate(); err != nil {
		return err
	}
	return in.Progress.Validate()
}

// ResolveProgress merges in onto current and applies the status coupling:
//
//   - pagecount >= maxpagecount forces "completed";
//   - an explicit "completed" request forces pagecount = maxpagecount;
//   - otherwise the record is "in progress".
//
// A completed record always has pagecount == maxpagecount. The result
// depends only on the merged values, so applying the same input twice
// yields the same progress.
func ResolveProgress(current entities.Progress, in ProgressInput) entities.Progress {
	next := current
	if in.PageCount != nil {
		next.PageCount = *in.PageCount
	}
	if in.MaxPageCount != nil {
		next.MaxPageCount = *in.MaxPageCount
	}

	requested := next.ReadingStatus
	if in.ReadingStatus != nil {
		requested = *in.ReadingStatus
	} else if in.PageCount != nil || in.MaxPageCount != nil {
		// Page changes without a status re-derive it from the counts.
		requested = entities.ReadingStatusInProgress
	}

	switch {
	case next.PageCount >= next.MaxPageCount, requested == entities.ReadingStatusCompleted:
		next.ReadingStatus = entities.ReadingStatusCompleted
		next.PageCount = next.MaxPageCount
	default:
		next.ReadingStatus = entities.ReadingStatusInProgress
	}
	return next
}
