package readings

import (
	"iter"
	"math"

	"github.com/mrlokans/readtrack/internal/entities"
)

// Sanitizer neutralizes executable markup in free text.
type Sanitizer interface {
	Sanitize(string) string
}

// Record is the client-facing reading record: one Book with its Progress and Rating.
type Record struct {
	ProgressID    uint                   `json:"progress_id"`
	BookID        uint                   `json:"book_id"`
	Title         string                 `json:"title"`
	Author        string                 `json:"author"`
	Description   string                 `json:"description"`
	Status        entities.ReadingStatus `json:"status"`
	ReadingStatus entities.ReadingStatus `json:"reading_status"`
	Percent       float64                `json:"percent"`
	PageCount     int                    `json:"pagecount"`
	MaxPageCount  int                    `json:"maxpagecount"`
	Rating        int                    `json:"rating"`
	Plot          int                    `json:"plot"`
	Prose         int                    `json:"prose"`
	Characters    int                    `json:"characters"`
	Worldbuilding int                    `json:"worldbuilding"`
	Theme         int                    `json:"theme"`
	Content       string                 `json:"content"`
}

// ViewBuilder projects joined rows into Records, sanitizing every free-text field.
type ViewBuilder struct {
	sanitizer Sanitizer
}

func NewViewBuilder(s Sanitizer) *ViewBuilder {
	return &ViewBuilder{sanitizer: s}
}

func (b *ViewBuilder) Build(row entities.ReadingRow) Record {
	return Record{
		ProgressID:    row.ProgressID,
		BookID:        row.BookID,
		Title:         b.sanitizer.Sanitize(row.Title),
		Author:        b.sanitizer.Sanitize(row.Author),
		Description:   b.sanitizer.Sanitize(row.Description),
		Status:        row.ReadingStatus,
		ReadingStatus: row.ReadingStatus,
		Percent:       roundPercent(row.Percent()),
		PageCount:     row.PageCount,
		MaxPageCount:  row.MaxPageCount,
		Rating:        row.Rating,
		Plot:          row.Plot,
		Prose:         row.Prose,
		Characters:    row.Characters,
		Worldbuilding: row.Worldbuilding,
		Theme:         row.Theme,
		Content:       b.sanitizer.Sanitize(row.Content),
	}
}

// BuildAll never returns nil, so an empty list encodes as [].
func (b *ViewBuilder) BuildAll(rows []entities.ReadingRow) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, b.Build(row))
	}
	return records
}

// Collect drains seq into Records, stopping at the first error.
func (b *ViewBuilder) Collect(seq iter.Seq2[entities.ReadingRow, error]) ([]Record, error) {
	records := []Record{}
	for row, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, b.Build(row))
	}
	return records, nil
}

func roundPercent(p float64) float64 {
	return math.Round(p*1000) / 1000
}
