package models

import (
	"time"
)

// Zone is a sub-region of a city. Names are unique per city only.
type Zone struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	CityID uint   `gorm:"uniqueIndex:idx_zone_city_name,priority:1;not null" json:"cityId"`
	Name   string `gorm:"uniqueIndex:idx_zone_city_name,priority:2;not null" json:"name"`

	// Boundary is an optional polygon stored as WKB, same as route geometry.
	Boundary []byte `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}
