// internal/models/city.go
package models

import (
	"strings"
	"time"
)

// City is the root of the location hierarchy.
// NameKey holds the normalized name so the unique index is case-insensitive
// on every backend.
type City struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	NameKey   string    `gorm:"uniqueIndex:idx_city_name_key;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// CityNameKey normalizes a city name for uniqueness checks.
func CityNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
