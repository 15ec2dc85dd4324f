package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/pkg/logger"
)

const (
	otpTTL         = 10 * time.Minute
	otpResendAfter = 60 * time.Second
	maxOTPAttempts = 5
)

type otpStore interface {
	Put(ctx context.Context, v *models.OTPVerification) error
	Get(ctx context.Context, email string) (*models.OTPVerification, error)
	MarkVerified(ctx context.Context, email string) error
	IncrementAttempts(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

// codeCrypter encrypts verification codes at rest.
type codeCrypter interface {
	KmsEncrypt(ctx context.Context, plaintext string) (string, error)
	KmsDecrypt(ctx context.Context, ciphertext string) (string, error)
}

type otpService struct {
	store   otpStore
	crypter codeCrypter
	mailer  mailSender
	now     func() time.Time
}

func NewOTPService(store otpStore, crypter codeCrypter, mailer mailSender) *otpService {
	return &otpService{
		store:   store,
		crypter: crypter,
		mailer:  mailer,
		now:     time.Now,
	}
}

// SendOTP issues a fresh verification code and emails it. A resend
// replaces the previous code; rapid resends are throttled.
func (s *otpService) SendOTP(ctx context.Context, req dto.SendOTPRequest) (dto.SendOTPResponse, error) {
	if req.Email == "" || !emailPattern.MatchString(req.Email) {
		return dto.SendOTPResponse{}, errs.NewValidationError("a valid email is required")
	}

	existing, err := s.store.Get(ctx, req.Email)
	if err != nil {
		var nf *errs.NotFoundError
		if !errors.As(err, &nf) {
			return dto.SendOTPResponse{}, err
		}
	}
	now := s.now()
	if existing != nil && !existing.Verified && now.Sub(existing.CreatedAt) < otpResendAfter {
		return dto.SendOTPResponse{}, errs.NewValidationError("a code was sent recently, wait before requesting another")
	}

	code, err := generateOTPCode()
	if err != nil {
		return dto.SendOTPResponse{}, err
	}
	ciphertext, err := s.crypter.KmsEncrypt(ctx, code)
	if err != nil {
		return dto.SendOTPResponse{}, errs.NewExternalServiceError("kms", "failed to protect verification code", true)
	}

	v := &models.OTPVerification{
		Email:          req.Email,
		CodeCiphertext: ciphertext,
		CreatedAt:      now,
		ExpiresAt:      now.Add(otpTTL),
	}
	if err := s.store.Put(ctx, v); err != nil {
		return dto.SendOTPResponse{}, err
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(otpTTL.Minutes()))
	if err := s.mailer.Send(req.Email, "Your verification code", body); err != nil {
		return dto.SendOTPResponse{}, err
	}
	logger.FromContext(ctx).Info("verification code sent", "email", req.Email)

	return dto.SendOTPResponse{Email: req.Email, ExpiresAt: v.ExpiresAt}, nil
}

// VerifyOTP checks a submitted code. Wrong codes count toward a small
// attempt budget; expired codes must be reissued.
func (s *otpService) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error) {
	if req.Email == "" || req.Code == "" {
		return dto.VerifyOTPResponse{}, errs.NewValidationError("email and code are required")
	}

	v, err := s.store.Get(ctx, req.Email)
	if err != nil {
		return dto.VerifyOTPResponse{}, err
	}
	if v.Verified {
		return dto.VerifyOTPResponse{Email: req.Email, Verified: true}, nil
	}
	if s.now().After(v.ExpiresAt) {
		return dto.VerifyOTPResponse{}, errs.NewValidationError("the code has expired, request a new one")
	}
	if v.Attempts >= maxOTPAttempts {
		return dto.VerifyOTPResponse{}, errs.NewValidationError("too many attempts, request a new code")
	}

	code, err := s.crypter.KmsDecrypt(ctx, v.CodeCiphertext)
	if err != nil {
		return dto.VerifyOTPResponse{}, errs.NewExternalServiceError("kms", "failed to read verification code", true)
	}
	if code != req.Code {
		if err := s.store.IncrementAttempts(ctx, req.Email); err != nil {
			logger.FromContext(ctx).Error("failed to record verification attempt", "email", req.Email, "error", err)
		}
		return dto.VerifyOTPResponse{}, errs.NewValidationError("incorrect code")
	}

	if err := s.store.MarkVerified(ctx, req.Email); err != nil {
		return dto.VerifyOTPResponse{}, err
	}
	return dto.VerifyOTPResponse{Email: req.Email, Verified: true}, nil
}

// IsVerified reports whether an email completed verification. Missing
// records are simply unverified.
func (s *otpService) IsVerified(ctx context.Context, email string) (bool, error) {
	v, err := s.store.Get(ctx, email)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return v.Verified, nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
