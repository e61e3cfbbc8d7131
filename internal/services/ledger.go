package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"exit_poll/internal/models"
)

// AlreadyVotedMessage is what a voter sees on a repeated vote.
const AlreadyVotedMessage = "you already voted for this candidate"

type VoteReceipt struct {
	CandidateID   uint   `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	TotalVotes    int64  `json:"totalVotes"`
}

// CastVote appends a ledger entry and bumps the candidate counter in one
// transaction. The unique (candidate_id, device_id) index makes a second
// vote from the same device fail with AlreadyVoted, concurrent attempts
// included, and leaves the counter untouched.
func (s *Services) CastVote(ctx context.Context, candidateID uint, deviceID, ipAddress string) (*VoteReceipt, error) {
	deviceID = strings.TrimSpace(deviceID)
	if candidateID == 0 || deviceID == "" {
		s.metrics.VoteRejected(string(KindInvalidArgument))
		return nil, invalidArgument("candidateId and deviceId are required")
	}

	var receipt VoteReceipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cand models.Candidate
		if err := tx.Select("id", "name").First(&cand, candidateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("candidate %d not found", candidateID)
			}
			return err
		}

		vote := models.Vote{
			ID:          uuid.NewString(),
			CandidateID: candidateID,
			DeviceID:    deviceID,
			IPAddress:   ipAddress,
			VotedAt:     s.now().UTC(),
		}
		if err := tx.Create(&vote).Error; err != nil {
			if isDuplicateKey(err) {
				return newError(KindAlreadyVoted, AlreadyVotedMessage)
			}
			return err
		}

		res := tx.Model(&models.Candidate{}).
			Where("id = ?", candidateID).
			UpdateColumn("total_votes", gorm.Expr("total_votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			// deleted between the lookup and the increment
			return notFound("candidate %d not found", candidateID)
		}

		if err := tx.Select("total_votes").First(&cand, candidateID).Error; err != nil {
			return err
		}
		receipt = VoteReceipt{
			CandidateID:   candidateID,
			CandidateName: cand.Name,
			TotalVotes:    cand.TotalVotes,
		}
		return nil
	})
	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = KindUnavailable
		}
		s.metrics.VoteRejected(string(kind))
		if kind == KindUnavailable {
			logrus.WithError(err).WithField("candidate_id", candidateID).Error("vote transaction failed")
		}
		return nil, storeError(err, "cast vote")
	}

	s.metrics.VoteCast()
	logrus.WithFields(logrus.Fields{
		"candidate_id": candidateID,
		"total_votes":  receipt.TotalVotes,
	}).Debug("vote recorded")
	return &receipt, nil
}
