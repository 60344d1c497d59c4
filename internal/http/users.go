package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/auth"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/readings"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// UserResponse is the serialized account returned on registration.
type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DateCreated time.Time `json:"date_created"`
}

type createRecordRequest struct {
	Title        *string `json:"title"`
	Author       *string `json:"author"`
	Description  *string `json:"description"`
	MaxPageCount *int    `json:"maxpagecount"`
}

// UsersController handles registration and the per-user reading list.
type UsersController struct {
	auth      *auth.Service
	readings  *readings.Service
	sanitizer readings.Sanitizer
	log       *zap.Logger
}

func NewUsersController(authService *auth.Service, readingService *readings.Service, sanitizer readings.Sanitizer, log *zap.Logger) *UsersController {
	return &UsersController{
		auth:      authService,
		readings:  readingService,
		sanitizer: sanitizer,
		log:       log,
	}
}

// Register creates an account.
// POST /api/users
func (uc *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.auth.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}, auth.ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()})
	if err != nil {
		respondAppError(c, uc.log, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/users/%d", user.ID))
	c.JSON(http.StatusCreated, uc.serializeUser(user))
}

// ListRecords returns every reading record of the user.
// GET /api/users/:user_id
func (uc *UsersController) ListRecords(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	records, err := uc.readings.ListReadingRecords(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateRecord logs a new book for the user.
// POST /api/users/:user_id
func (uc *UsersController) CreateRecord(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var req createRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := uc.readings.CreateReadingRecord(c.Request.Context(), userID, readings.CreateInput{
		Title:        req.Title,
		Author:       req.Author,
		Description:  req.Description,
		MaxPageCount: req.MaxPageCount,
	})
	if err != nil {
		respondAppError(c, uc.log, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/users/%d/books/%d", userID, record.BookID))
	c.JSON(http.StatusCreated, record)
}

func (uc *UsersController) serializeUser(user *entities.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    uc.sanitizer.Sanitize(user.Username),
		Email:       uc.sanitizer.Sanitize(user.Email),
		DateCreated: user.CreatedAt,
	}
}
