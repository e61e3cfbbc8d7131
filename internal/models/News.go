package models

import "time"

type News struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Headline    string    `gorm:"not null" json:"headline"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}
