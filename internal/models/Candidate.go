// internal/models/candidate.go
package models

import (
	"time"
)

// Candidate competes inside a single zone.
// TotalVotes is denormalized and only ever changed by the vote ledger.
type Candidate struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ZoneID       uint      `gorm:"index;not null" json:"zoneId"`
	Name         string    `gorm:"not null" json:"name"`
	PartyName    string    `gorm:"not null" json:"partyName"`
	PhotoURL     string    `json:"photoUrl"`
	PartyLogoURL string    `json:"partyLogoUrl"`
	TotalVotes   int64     `gorm:"not null;default:0" json:"totalVotes"`
	CreatedAt    time.Time `json:"createdAt"`
}
