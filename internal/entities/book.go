package entities

import "time"

// Book is a catalog entry. Books are not deduplicated: every logged reading
// creates its own row.
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Author      string    `gorm:"not null" json:"author"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `gorm:"column:date_created" json:"date_created"`
}

func (Book) TableName() string {
	return "books"
}
