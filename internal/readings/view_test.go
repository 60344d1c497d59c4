package readings

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/sanitize"
)

type upperSanitizer struct{}

func (upperSanitizer) Sanitize(s string) string { return strings.ToUpper(s) }

func TestViewBuilder_Build(t *testing.T) {
	row := entities.ReadingRow{
		ProgressID:    11,
		BookID:        22,
		Title:         "title",
		Author:        "author",
		Description:   "description",
		PageCount:     300,
		MaxPageCount:  600,
		ReadingStatus: entities.ReadingStatusInProgress,
		Rating:        4,
		Plot:          3,
		Prose:         2,
		Characters:    5,
		Worldbuilding: 1,
		Theme:         2,
		Content:       "content",
	}

	rec := NewViewBuilder(upperSanitizer{}).Build(row)

	assert.Equal(t, uint(11), rec.ProgressID)
	assert.Equal(t, uint(22), rec.BookID)
	assert.Equal(t, "TITLE", rec.Title)
	assert.Equal(t, "AUTHOR", rec.Author)
	assert.Equal(t, "DESCRIPTION", rec.Description)
	assert.Equal(t, "CONTENT", rec.Content)
	assert.Equal(t, entities.ReadingStatusInProgress, rec.Status)
	assert.Equal(t, entities.ReadingStatusInProgress, rec.ReadingStatus)
	assert.Equal(t, 0.5, rec.Percent)
	assert.Equal(t, 300, rec.PageCount)
	assert.Equal(t, 600, rec.MaxPageCount)
	assert.Equal(t, 4, rec.Rating)
	assert.Equal(t, 3, rec.Plot)
	assert.Equal(t, 2, rec.Prose)
	assert.Equal(t, 5, rec.Characters)
	assert.Equal(t, 1, rec.Worldbuilding)
	assert.Equal(t, 2, rec.Theme)
}

func TestViewBuilder_PercentRounding(t *testing.T) {
	b := NewViewBuilder(upperSanitizer{})

	rec := b.Build(entities.ReadingRow{PageCount: 1, MaxPageCount: 3})
	assert.Equal(t, 0.333, rec.Percent)

	rec = b.Build(entities.ReadingRow{PageCount: 637, MaxPageCount: 637})
	assert.Equal(t, 1.0, rec.Percent)
}

func TestViewBuilder_SanitizesMarkup(t *testing.T) {
	rec := NewViewBuilder(sanitize.NewPolicy()).Build(entities.ReadingRow{
		Title:        `Naughty naughty very naughty <script>alert("xss");</script>`,
		Author:       "Evil Sanderson",
		Description:  `Bad image <img src="https://url.to.file.which/does-not.exist" onerror="alert(document.cookie);">. But not <strong>all</strong> bad.`,
		MaxPageCount: 10,
	})

	assert.Equal(t, `Naughty naughty very naughty &lt;script&gt;alert("xss");&lt;/script&gt;`, rec.Title)
	assert.Equal(t, "Evil Sanderson", rec.Author)
	assert.Equal(t, `Bad image <img src="https://url.to.file.which/does-not.exist">. But not <strong>all</strong> bad.`, rec.Description)
}

func TestViewBuilder_BuildAllEmptyEncodesAsArray(t *testing.T) {
	records := NewViewBuilder(upperSanitizer{}).BuildAll(nil)

	data, err := json.Marshal(records)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestRecord_JSONFields(t *testing.T) {
	data, err := json.Marshal(Record{})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{
		"title", "author", "description", "status", "percent", "rating", "plot", "prose",
		"characters", "worldbuilding", "theme", "content", "progress_id", "book_id",
		"pagecount", "maxpagecount", "reading_status",
	} {
		assert.Contains(t, fields, key)
	}
}
