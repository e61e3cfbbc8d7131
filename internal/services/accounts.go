package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exit_poll/internal/models"
)

type LoginResult struct {
	Token string       `json:"token"`
	Admin models.Admin `json:"admin"`
}

func (s *Services) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidArgument("username and password are required")
	}

	var admin models.Admin
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindUnauthenticated, "invalid credentials")
		}
		return nil, storeError(err, "login")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		logrus.WithField("username", username).Warn("failed admin login")
		return nil, newError(KindUnauthenticated, "invalid credentials")
	}
	if s.tokens == nil {
		return nil, unavailable(nil, "token issuer not configured")
	}

	token, err := s.tokens.GenerateToken(admin.ID, RoleAdmin)
	if err != nil {
		return nil, unavailable(err, "could not generate token")
	}
	return &LoginResult{Token: token, Admin: admin}, nil
}

func (s *Services) Profile(ctx context.Context, adminID uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("admin %d not found", adminID)
		}
		return nil, storeError(err, "load profile")
	}
	return &admin, nil
}

// SeedAdmin creates the admin or resets its password.
func (s *Services) SeedAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return nil, invalidArgument("username and a password of at least 6 characters are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, unavailable(err, "could not hash password")
	}

	db := s.db.WithContext(ctx)
	row := models.Admin{Username: username, PasswordHash: string(hash), CreatedAt: s.now()}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&row).Error
	if err != nil {
		return nil, storeError(err, "seed admin")
	}

	var admin models.Admin
	if err := db.Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, storeError(err, "seed admin")
	}
	logrus.WithField("username", username).Info("admin seeded")
	return &admin, nil
}
