package database

import (
	"context"
	"errors"
	"strings"

	"dispatch-ledger/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// EnsureAdmin creates the first admin account when no users exist yet.
// It reports whether an account was created.
func (s *Store) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, unavailable("count users", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := db.Create(&user).Error; err != nil {
		return false, unavailable("create user", err)
	}
	return true, nil
}

// Authenticate checks a username/password pair against the stored bcrypt hash.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, unavailable("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
