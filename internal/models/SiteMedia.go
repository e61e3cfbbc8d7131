package models

import "time"

// SiteMediaKey is the fixed key of the single landing-page media row.
const SiteMediaKey = "home"

// SiteMedia holds the landing page photo and video. There is exactly one
// row, addressed by Key and written with an upsert.
type SiteMedia struct {
	Key       string    `gorm:"primaryKey;column:media_key;size:32" json:"-"`
	PhotoURL  string    `json:"photo"`
	VideoURL  string    `json:"video"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SiteMedia) TableName() string {
	return "site_media"
}
