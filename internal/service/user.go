package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetup-backend/internal/auth"
	"meetup-backend/internal/ids"
	"meetup-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService struct {
	db     *gorm.DB
	gen    ids.Generator
	now    func() time.Time
	tokens auth.ResetTokens
	used   auth.UsedTokens
}

func NewUserService(db *gorm.DB, gen ids.Generator, now func() time.Time, tokens auth.ResetTokens, used auth.UsedTokens) *UserService {
	if tokens.Now == nil {
		tokens.Now = now
	}
	return &UserService{db: db, gen: gen, now: now, tokens: tokens, used: used}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active user with a hashed password.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrInvalid)
	}
	db := s.db.WithContext(ctx)
	taken, err := exists(db, &models.User{}, "email = ?", email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{Email: email, Password: hash, IsActive: true}
	if err := insertWithID(db, s.gen, "user", &user, func(id int64) { user.ID = id }); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the password and that the account is active.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *UserService) SetActive(ctx context.Context, id int64, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// UpsertProfile creates the user's profile or replaces every field of the existing one.
func (s *UserService) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	if strings.TrimSpace(profile.Name) == "" || strings.TrimSpace(profile.LastName) == "" {
		return fmt.Errorf("%w: name and last name are required", models.ErrInvalid)
	}
	if profile.Birthdate.IsZero() {
		return fmt.Errorf("%w: birthdate is required", models.ErrInvalid)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.User{}, "id = ?", profile.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %d: %w", profile.UserID, models.ErrNotFound)
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(profile).Error
	})
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, "profile")
	}
	return &profile, nil
}

// Delete removes the user and everything the user owns.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteUser(tx, id)
	})
}

// SenderImage is the image shown next to the user's messages, or nil.
func (s *UserService) SenderImage(ctx context.Context, userID int64) *string {
	return senderImage(s.db.WithContext(ctx), userID)
}

func (s *UserService) GenerateResetToken(ctx context.Context, userID int64) (string, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return "", err
	}
	return s.tokens.Generate(userID)
}

// VerifyResetToken returns the user the token was issued for, or nil when
// the token is invalid, expired, already redeemed, or names no user.
func (s *UserService) VerifyResetToken(ctx context.Context, token string) *models.User {
	id, ok := s.tokens.Parse(token)
	if !ok {
		return nil
	}
	if s.used != nil {
		used, err := s.used.IsUsed(ctx, token)
		if err != nil {
			log.Warn().Err(err).Msg("reset token used lookup")
			return nil
		}
		if used {
			return nil
		}
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil
	}
	return user
}

// ResetPassword redeems token and sets a new password for its user. The
// token is burned in the same transaction as the password write, so a
// failed write leaves it usable and a second redemption rolls back.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) (*models.User, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", models.ErrInvalid)
	}
	user := s.VerifyResetToken(ctx, token)
	if user == nil {
		return nil, ErrInvalidToken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password", hash).Error; err != nil {
			return err
		}
		if s.used == nil {
			return nil
		}
		ttl := s.tokens.MaxAge
		if ttl <= 0 {
			ttl = auth.DefaultResetMaxAge
		}
		first, err := s.used.MarkUsed(ctx, token, ttl)
		if err != nil {
			return err
		}
		if !first {
			return ErrInvalidToken
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
