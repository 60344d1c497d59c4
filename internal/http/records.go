package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/readings"
)

type updateRecordRequest struct {
	Rating        *int    `json:"rating"`
	Plot          *int    `json:"plot"`
	Prose         *int    `json:"prose"`
	Characters    *int    `json:"characters"`
	Worldbuilding *int    `json:"worldbuilding"`
	Theme         *int    `json:"theme"`
	Content       *string `json:"content"`

	PageCount     *int                    `json:"pagecount"`
	MaxPageCount  *int                    `json:"maxpagecount"`
	ReadingStatus *entities.ReadingStatus `json:"reading_status"`
}

// RecordsController serves a single logged book of a user.
type RecordsController struct {
	readings *readings.Service
	log      *zap.Logger
}

func NewRecordsController(readingService *readings.Service, log *zap.Logger) *RecordsController {
	return &RecordsController{readings: readingService, log: log}
}

// GetRecord returns the record as a one-element array.
// GET /api/users/:user_id/books/:book_id
func (rc *RecordsController) GetRecord(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}

	records, err := rc.readings.GetReadingRecord(c.Request.Context(), userID, bookID)
	if err != nil {
		respondAppError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// UpdateRecord replaces the rating and merges progress.
// PATCH /api/users/:user_id/books/:book_id
func (rc *RecordsController) UpdateRecord(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}

	var req updateRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := rc.readings.UpdateReadingRecord(c.Request.Context(), userID, bookID, readings.UpdateInput{
		Rating: readings.RatingInput{
			Rating:        req.Rating,
			Plot:          req.Plot,
			Prose:         req.Prose,
			Characters:    req.Characters,
			Worldbuilding: req.Worldbuilding,
			Theme:         req.Theme,
			Content:       req.Content,
		},
		Progress: readings.ProgressInput{
			PageCount:     req.PageCount,
			MaxPageCount:  req.MaxPageCount,
			ReadingStatus: req.ReadingStatus,
		},
	})
	if err != nil {
		respondAppError(c, rc.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
