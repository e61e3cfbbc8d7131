package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exit_poll/internal/models"
)

const mediaFolder = "site"

type NewsInput struct {
	Title       string
	Headline    string
	Description string
}

func (s *Services) AddNews(ctx context.Context, in NewsInput) (*models.News, error) {
	item := models.News{
		Title:       strings.TrimSpace(in.Title),
		Headline:    strings.TrimSpace(in.Headline),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.now(),
	}
	var missing []string
	if item.Title == "" {
		missing = append(missing, "title")
	}
	if item.Headline == "" {
		missing = append(missing, "headline")
	}
	if len(missing) > 0 {
		e := invalidArgument("missing required fields: %s", strings.Join(missing, ", "))
		e.Failed = missing
		return nil, e
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, storeError(err, "add news")
	}
	return &item, nil
}

// ListNews returns news newest first.
func (s *Services) ListNews(ctx context.Context) ([]models.News, error) {
	var items []models.News
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, storeError(err, "list news")
	}
	return items, nil
}

func (s *Services) DeleteNews(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.News{}, id)
	if res.Error != nil {
		return storeError(res.Error, "delete news")
	}
	if res.RowsAffected == 0 {
		return notFound("news %d not found", id)
	}
	return nil
}

type MediaUpload struct {
	Photo *AssetRef
	Video *AssetRef
}

// GetMedia returns the landing page media, empty when nothing was uploaded.
func (s *Services) GetMedia(ctx context.Context) (*models.SiteMedia, error) {
	var media models.SiteMedia
	err := s.db.WithContext(ctx).Where("media_key = ?", models.SiteMediaKey).First(&media).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.SiteMedia{Key: models.SiteMediaKey}, nil
	}
	if err != nil {
		return nil, storeError(err, "load media")
	}
	return &media, nil
}

// UploadMedia replaces the photo and/or video of the single media row. The
// row is written with an upsert on its fixed key, touching only the columns
// that were uploaded.
func (s *Services) UploadMedia(ctx context.Context, req MediaUpload) (*models.SiteMedia, error) {
	if !req.Photo.present() && !req.Video.present() {
		return nil, invalidArgument("photo or video is required")
	}
	if err := checkImage(req.Photo, "photo"); err != nil {
		return nil, err
	}
	if req.Video.present() && !req.Video.hasType("video/") {
		e := invalidArgument("video must be a video, got %q", req.Video.ContentType)
		e.Failed = []string{"video"}
		return nil, e
	}

	current, err := s.GetMedia(ctx)
	if err != nil {
		return nil, err
	}

	row := models.SiteMedia{Key: models.SiteMediaKey, UpdatedAt: s.now()}
	cols := []string{"updated_at"}
	if req.Photo.present() {
		if row.PhotoURL, err = s.upload(ctx, mediaFolder, req.Photo); err != nil {
			return nil, err
		}
		cols = append(cols, "photo_url")
	}
	if req.Video.present() {
		if row.VideoURL, err = s.upload(ctx, mediaFolder, req.Video); err != nil {
			s.discard(ctx, row.PhotoURL)
			return nil, err
		}
		cols = append(cols, "video_url")
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "media_key"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&row).Error
	if err != nil {
		s.discard(ctx, row.PhotoURL, row.VideoURL)
		return nil, storeError(err, "save media")
	}

	if row.PhotoURL != "" && current.PhotoURL != row.PhotoURL {
		s.discard(ctx, current.PhotoURL)
	}
	if row.VideoURL != "" && current.VideoURL != row.VideoURL {
		s.discard(ctx, current.VideoURL)
	}
	logrus.WithField("columns", cols).Info("site media updated")
	return s.GetMedia(ctx)
}
