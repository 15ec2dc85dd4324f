package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/pkg/helpers"
)

type stubOTPStore struct {
	records map[string]*models.OTPVerification
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{records: make(map[string]*models.OTPVerification)}
}

func (s *stubOTPStore) Put(_ context.Context, v *models.OTPVerification) error {
	copied := *v
	s.records[strings.ToLower(v.Email)] = &copied
	return nil
}

func (s *stubOTPStore) Get(_ context.Context, email string) (*models.OTPVerification, error) {
	v, ok := s.records[strings.ToLower(email)]
	if !ok {
		return nil, errs.NewNotFoundError("no verification pending for this email")
	}
	copied := *v
	return &copied, nil
}

func (s *stubOTPStore) MarkVerified(_ context.Context, email string) error {
	s.records[strings.ToLower(email)].Verified = true
	return nil
}

func (s *stubOTPStore) IncrementAttempts(_ context.Context, email string) error {
	s.records[strings.ToLower(email)].Attempts++
	return nil
}

func (s *stubOTPStore) Delete(_ context.Context, email string) error {
	delete(s.records, strings.ToLower(email))
	return nil
}

// fakeCrypter reverses the string so ciphertext differs from plaintext
// without real key material.
type fakeCrypter struct{}

func (fakeCrypter) KmsEncrypt(_ context.Context, plaintext string) (string, error) {
	return reverse(plaintext), nil
}

func (fakeCrypter) KmsDecrypt(_ context.Context, ciphertext string) (string, error) {
	return reverse(ciphertext), nil
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func newOTPTestService(store *stubOTPStore, mailer *stubMailer) *otpService {
	svc := NewOTPService(store, fakeCrypter{}, mailer)
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

// sentCode digs the six digit code out of the captured email body.
func sentCode(t *testing.T, mailer *stubMailer) string {
	t.Helper()
	if len(mailer.bodies) == 0 {
		t.Fatal("no email sent")
	}
	body := mailer.bodies[len(mailer.bodies)-1]
	for _, word := range strings.Fields(body) {
		trimmed := strings.TrimSuffix(word, ".")
		if len(trimmed) == 6 && strings.Trim(trimmed, "0123456789") == "" {
			return trimmed
		}
	}
	t.Fatalf("no code in email body %q", body)
	return ""
}

func TestSendAndVerifyOTP(t *testing.T) {
	store := newStubOTPStore()
	mailer := &stubMailer{}
	svc := newOTPTestService(store, mailer)
	ctx := helpers.TestCtx()

	resp, err := svc.SendOTP(ctx, dto.SendOTPRequest{Email: "priya@example.com"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.ExpiresAt.Sub(svc.now()) != otpTTL {
		t.Errorf("expiry = %v", resp.ExpiresAt)
	}

	code := sentCode(t, mailer)
	rec := store.records["priya@example.com"]
	if rec.CodeCiphertext == code {
		t.Error("code must not be stored in plaintext")
	}

	vr, err := svc.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "priya@example.com", Code: code})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !vr.Verified {
		t.Error("verification not reported")
	}

	ok, err := svc.IsVerified(ctx, "priya@example.com")
	if err != nil || !ok {
		t.Errorf("IsVerified = %v, %v", ok, err)
	}
}

func TestVerifyOTPWrongCodeCountsAttempt(t *testing.T) {
	store := newStubOTPStore()
	mailer := &stubMailer{}
	svc := newOTPTestService(store, mailer)
	ctx := helpers.TestCtx()

	if _, err := svc.SendOTP(ctx, dto.SendOTPRequest{Email: "priya@example.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	_, err := svc.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "priya@example.com", Code: "000000"})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if store.records["priya@example.com"].Attempts != 1 {
		t.Errorf("attempts = %d", store.records["priya@example.com"].Attempts)
	}

	store.records["priya@example.com"].Attempts = maxOTPAttempts
	code := sentCode(t, mailer)
	if _, err := svc.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "priya@example.com", Code: code}); err == nil {
		t.Error("verification allowed past the attempt budget")
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	store := newStubOTPStore()
	mailer := &stubMailer{}
	svc := newOTPTestService(store, mailer)
	ctx := helpers.TestCtx()

	if _, err := svc.SendOTP(ctx, dto.SendOTPRequest{Email: "priya@example.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 11, 0, 0, 0, time.UTC) }

	code := sentCode(t, mailer)
	if _, err := svc.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "priya@example.com", Code: code}); err == nil {
		t.Error("expired code accepted")
	}
}

func TestSendOTPThrottlesResend(t *testing.T) {
	store := newStubOTPStore()
	svc := newOTPTestService(store, &stubMailer{})
	ctx := helpers.TestCtx()

	if _, err := svc.SendOTP(ctx, dto.SendOTPRequest{Email: "priya@example.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.SendOTP(ctx, dto.SendOTPRequest{Email: "priya@example.com"}); err == nil {
		t.Error("immediate resend accepted")
	}

	// After the cooldown the code is replaced.
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 10, 2, 0, 0, time.UTC) }
	if _, err := svc.SendOTP(ctx, dto.SendOTPRequest{Email: "priya@example.com"}); err != nil {
		t.Errorf("resend after cooldown: %v", err)
	}
}

func TestSendOTPRejectsBadEmail(t *testing.T) {
	svc := newOTPTestService(newStubOTPStore(), &stubMailer{})

	if _, err := svc.SendOTP(helpers.TestCtx(), dto.SendOTPRequest{Email: "not-an-email"}); err == nil {
		t.Error("invalid email accepted")
	}
}

func TestIsVerifiedUnknownEmail(t *testing.T) {
	svc := newOTPTestService(newStubOTPStore(), &stubMailer{})

	ok, err := svc.IsVerified(helpers.TestCtx(), "nobody@example.com")
	if err != nil {
		t.Fatalf("IsVerified: %v", err)
	}
	if ok {
		t.Error("unknown email reported verified")
	}
}
