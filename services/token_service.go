package services

import (
	"context"
	"time"

	"github.com/vivekdhawan/gravimetry-api/model"
	"github.com/vivekdhawan/gravimetry-api/utils/apperror"
	authutil "github.com/vivekdhawan/gravimetry-api/utils/auth"
	"github.com/vivekdhawan/gravimetry-api/utils/crypto"
	"gorm.io/gorm"
)

const (
	// ResetTokenExpiry is the validity window of a password reset token
	ResetTokenExpiry = 1 * time.Hour
	// VerificationTokenExpiry is the validity window of an email verification token
	VerificationTokenExpiry = 24 * time.Hour
)

// TokenService manages the single-use, time-boxed password-reset and
// email-verification tokens. At most one active token exists per email per
// kind; issuing a new one deletes priors, and consuming is atomic so a
// concurrent second attempt on the same token fails.
type TokenService struct {
	db *gorm.DB
}

// NewTokenService creates a new token service
func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{db: db}
}

// IssueResetToken creates a fresh password reset token for the email,
// invalidating any prior one.
func (s *TokenService) IssueResetToken(ctx context.Context, email string) (string, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.PasswordResetToken{
			Email:     email,
			Token:     token,
			ExpiresAt: time.Now().Add(ResetTokenExpiry),
		}).Error
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken validates and consumes a reset token, then rehashes the
// user's password. The delete-by-token is checked by rows affected inside
// the transaction, so of two concurrent completions only one succeeds.
func (s *TokenService) ConsumeResetToken(ctx context.Context, token, newPassword string) error {
	hash, err := authutil.HashPassword(newPassword)
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, "Invalid new password", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.PasswordResetToken
		err := tx.Where("token = ? AND expires_at > ?", token, time.Now()).First(&record).Error
		if err == gorm.ErrRecordNotFound {
			return apperror.Auth("Invalid or expired token")
		}
		if err != nil {
			return err
		}

		res := tx.Where("token = ?", token).Delete(&model.PasswordResetToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Auth("Invalid or expired token")
		}

		return tx.Model(&model.User{}).
			Where("email = ?", record.Email).
			Updates(map[string]interface{}{
				"password_hash": hash,
				"updated_at":    time.Now(),
			}).Error
	})
}

// IssueVerificationToken creates a fresh email verification token for the
// email, invalidating any prior one.
func (s *TokenService) IssueVerificationToken(ctx context.Context, email string) (string, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&model.EmailVerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.EmailVerificationToken{
			Email:     email,
			Token:     token,
			ExpiresAt: time.Now().Add(VerificationTokenExpiry),
		}).Error
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeVerificationToken validates and consumes a verification token and
// flips the user's is_verified flag. Same single-use guarantee as
// ConsumeResetToken.
func (s *TokenService) ConsumeVerificationToken(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.EmailVerificationToken
		err := tx.Where("token = ? AND expires_at > ?", token, time.Now()).First(&record).Error
		if err == gorm.ErrRecordNotFound {
			return apperror.Auth("Invalid or expired verification token.")
		}
		if err != nil {
			return err
		}

		res := tx.Where("token = ?", token).Delete(&model.EmailVerificationToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Auth("Invalid or expired verification token.")
		}

		return tx.Model(&model.User{}).
			Where("email = ?", record.Email).
			Updates(map[string]interface{}{
				"is_verified": true,
				"updated_at":  time.Now(),
			}).Error
	})
}

// DeleteExpired removes reset and verification tokens past their expiry.
// Called by the background cleanup job.
func (s *TokenService) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now()

	reset := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.PasswordResetToken{})
	if reset.Error != nil {
		return 0, reset.Error
	}

	verify := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.EmailVerificationToken{})
	if verify.Error != nil {
		return reset.RowsAffected, verify.Error
	}

	return reset.RowsAffected + verify.RowsAffected, nil
}
