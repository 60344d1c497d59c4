package entities

import "time"

type ReadingStatus string

const (
	ReadingStatusInProgress ReadingStatus = "in progress"
	ReadingStatusCompleted  ReadingStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case ReadingStatusInProgress, ReadingStatusCompleted:
		return true
	}
	return false
}

// Progress tracks how far a user is through one book. Exactly one row exists
// per (user, book) pair.
type Progress struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;uniqueIndex:idx_progress_user_book" json:"user_id"`
	BookID        uint          `gorm:"not null;uniqueIndex:idx_progress_user_book" json:"book_id"`
	PageCount     int           `gorm:"column:pagecount;not null" json:"pagecount"`
	MaxPageCount  int           `gorm:"column:maxpagecount;not null" json:"maxpagecount"`
	ReadingStatus ReadingStatus `gorm:"size:20;not null" json:"reading_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Progress) TableName() string {
	return "progress"
}

// Percent is the completed fraction in [0, 1].
func (p Progress) Percent() float64 {
	if p.MaxPageCount <= 0 {
		return 0
	}
	return float64(p.PageCount) / float64(p.MaxPageCount)
}

// Rating holds the score and reflections for one (user, book) pair.
type Rating struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_ratings_user_book" json:"user_id"`
	BookID        uint      `gorm:"not null;uniqueIndex:idx_ratings_user_book" json:"book_id"`
	Rating        int       `gorm:"not null" json:"rating"`
	Plot          int       `gorm:"not null" json:"plot"`
	Prose         int       `gorm:"not null" json:"prose"`
	Characters    int       `gorm:"not null" json:"characters"`
	Worldbuilding int       `gorm:"not null" json:"worldbuilding"`
	Theme         int       `gorm:"not null" json:"theme"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// ReadingRow is one joined Book ⋈ Progress ⋈ Rating row as read from storage.
type ReadingRow struct {
	ProgressID    uint
	BookID        uint
	Title         string
	Author        string
	Description   string
	PageCount     int `gorm:"column:pagecount"`
	MaxPageCount  int `gorm:"column:maxpagecount"`
	ReadingStatus ReadingStatus
	Rating        int
	Plot          int
	Prose         int
	Characters    int
	Worldbuilding int
	Theme         int
	Content       string
}

// Percent is the completed fraction in [0, 1].
func (r ReadingRow) Percent() float64 {
	return Progress{PageCount: r.PageCount, MaxPageCount: r.MaxPageCount}.Percent()
}
