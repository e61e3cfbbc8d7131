package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"exit_poll/internal/models"
)

const (
	photoFolder = "candidates/photos"
	logoFolder  = "candidates/logos"
)

type CandidateCreateRequest struct {
	ZoneID    uint
	Name      string
	PartyName string
	Photo     *AssetRef
	Logo      *AssetRef
}

// CandidateUpdateRequest changes only the fields that are set.
type CandidateUpdateRequest struct {
	Name      *string
	PartyName *string
	Photo     *AssetRef
	Logo      *AssetRef
}

// CandidateView is a candidate with the names of its zone and city.
type CandidateView struct {
	models.Candidate
	ZoneName string `json:"zoneName"`
	CityName string `json:"cityName"`
}

func checkImage(ref *AssetRef, field string) error {
	if ref.present() && !ref.hasType("image/") {
		e := invalidArgument("%s must be an image, got %q", field, ref.ContentType)
		e.Failed = []string{field}
		return e
	}
	return nil
}

// RegisterCandidate validates the whole request before touching storage.
// Photo and logo are uploaded first; if anything afterwards fails the
// uploaded files are deleted again.
func (s *Services) RegisterCandidate(ctx context.Context, req CandidateCreateRequest) (*models.Candidate, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.PartyName = strings.TrimSpace(req.PartyName)

	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.PartyName == "" {
		missing = append(missing, "partyName")
	}
	if req.ZoneID == 0 {
		missing = append(missing, "zoneId")
	}
	if !req.Photo.present() {
		missing = append(missing, "photo")
	}
	if !req.Logo.present() {
		missing = append(missing, "partyLogo")
	}
	if len(missing) > 0 {
		e := invalidArgument("missing required fields: %s", strings.Join(missing, ", "))
		e.Failed = missing
		return nil, e
	}
	if err := checkImage(req.Photo, "photo"); err != nil {
		return nil, err
	}
	if err := checkImage(req.Logo, "partyLogo"); err != nil {
		return nil, err
	}
	if _, err := s.getZone(ctx, req.ZoneID); err != nil {
		return nil, err
	}

	photoURL, err := s.upload(ctx, photoFolder, req.Photo)
	if err != nil {
		return nil, err
	}
	logoURL, err := s.upload(ctx, logoFolder, req.Logo)
	if err != nil {
		s.discard(ctx, photoURL)
		return nil, err
	}

	cand := models.Candidate{
		ZoneID:       req.ZoneID,
		Name:         req.Name,
		PartyName:    req.PartyName,
		PhotoURL:     photoURL,
		PartyLogoURL: logoURL,
		CreatedAt:    s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&cand).Error; err != nil {
		s.discard(ctx, photoURL, logoURL)
		return nil, storeError(err, "register candidate")
	}

	logrus.WithFields(logrus.Fields{
		"candidate_id": cand.ID,
		"zone_id":      cand.ZoneID,
		"name":         cand.Name,
	}).Info("candidate registered")
	return &cand, nil
}

func (s *Services) ListCandidatesByZone(ctx context.Context, zoneID uint) ([]CandidateView, error) {
	if _, err := s.getZone(ctx, zoneID); err != nil {
		return nil, err
	}
	var out []CandidateView
	err := s.db.WithContext(ctx).
		Table("candidates").
		Select("candidates.*, zones.name AS zone_name, COALESCE(cities.name, '') AS city_name").
		Joins("JOIN zones ON zones.id = candidates.zone_id").
		Joins("LEFT JOIN cities ON cities.id = zones.city_id").
		Where("candidates.zone_id = ?", zoneID).
		Order("candidates.name asc").
		Scan(&out).Error
	if err != nil {
		return nil, storeError(err, "list candidates")
	}
	return out, nil
}

func (s *Services) getCandidate(ctx context.Context, id uint) (*models.Candidate, error) {
	var cand models.Candidate
	if err := s.db.WithContext(ctx).First(&cand, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("candidate %d not found", id)
		}
		return nil, storeError(err, "load candidate")
	}
	return &cand, nil
}

// UpdateCandidate never writes total_votes; only the ledger moves it.
func (s *Services) UpdateCandidate(ctx context.Context, id uint, req CandidateUpdateRequest) (*models.Candidate, error) {
	cand, err := s.getCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidArgument("candidate name cannot be empty")
		}
		changes["name"] = name
	}
	if req.PartyName != nil {
		party := strings.TrimSpace(*req.PartyName)
		if party == "" {
			return nil, invalidArgument("party name cannot be empty")
		}
		changes["party_name"] = party
	}
	if err := checkImage(req.Photo, "photo"); err != nil {
		return nil, err
	}
	if err := checkImage(req.Logo, "partyLogo"); err != nil {
		return nil, err
	}

	var newPhoto, newLogo string
	if req.Photo.present() {
		if newPhoto, err = s.upload(ctx, photoFolder, req.Photo); err != nil {
			return nil, err
		}
		changes["photo_url"] = newPhoto
	}
	if req.Logo.present() {
		if newLogo, err = s.upload(ctx, logoFolder, req.Logo); err != nil {
			s.discard(ctx, newPhoto)
			return nil, err
		}
		changes["party_logo_url"] = newLogo
	}
	if len(changes) == 0 {
		return cand, nil
	}

	res := s.db.WithContext(ctx).Model(&models.Candidate{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		s.discard(ctx, newPhoto, newLogo)
		return nil, storeError(res.Error, "update candidate")
	}
	if res.RowsAffected == 0 {
		// deleted while the uploads were running
		s.discard(ctx, newPhoto, newLogo)
		return nil, notFound("candidate %d not found", id)
	}

	if newPhoto != "" {
		s.discard(ctx, cand.PhotoURL)
	}
	if newLogo != "" {
		s.discard(ctx, cand.PartyLogoURL)
	}
	return s.getCandidate(ctx, id)
}

// DeleteCandidate removes the candidate and then its media. Votes cast for
// it stay in the ledger.
func (s *Services) DeleteCandidate(ctx context.Context, id uint) error {
	cand, err := s.getCandidate(ctx, id)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Candidate{}, id)
	if res.Error != nil {
		return storeError(res.Error, "delete candidate")
	}
	if res.RowsAffected == 0 {
		return notFound("candidate %d not found", id)
	}
	s.discard(ctx, cand.PhotoURL, cand.PartyLogoURL)
	logrus.WithField("candidate_id", id).Info("candidate deleted")
	return nil
}
