package models

import (
	"time"
)

// Vote is one immutable ledger entry. The composite unique index is what
// rejects a second vote from the same device for the same candidate.
type Vote struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CandidateID uint      `gorm:"uniqueIndex:idx_vote_candidate_device,priority:1;not null" json:"candidateId"`
	DeviceID    string    `gorm:"uniqueIndex:idx_vote_candidate_device,priority:2;size:255;not null" json:"deviceId"`
	IPAddress   string    `gorm:"size:64" json:"ipAddress"`
	VotedAt     time.Time `gorm:"index;not null" json:"votedAt"`
}
