package store

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

const otpCollection = "otp_verifications"

type otpStore struct {
	client *firestore.Client
}

func NewOTPStore(client *firestore.Client) *otpStore {
	return &otpStore{client: client}
}

// One verification per email: the document ID is the lowercased
// address, so a resend replaces the previous code.
func (s *otpStore) doc(email string) *firestore.DocumentRef {
	return s.client.Collection(otpCollection).Doc(strings.ToLower(email))
}

func (s *otpStore) Put(ctx context.Context, v *models.OTPVerification) error {
	_, err := s.doc(v.Email).Set(ctx, v)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save verification", err)
	}
	return nil
}

func (s *otpStore) Get(ctx context.Context, email string) (*models.OTPVerification, error) {
	doc, err := s.doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("no verification pending for this email")
		}
		return nil, errs.NewDatabaseError("read", "failed to get verification", err)
	}
	var v models.OTPVerification
	if err := doc.DataTo(&v); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse verification", err)
	}
	return &v, nil
}

func (s *otpStore) MarkVerified(ctx context.Context, email string) error {
	_, err := s.doc(email).Update(ctx, []firestore.Update{
		{Path: "verified", Value: true},
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to mark verification", err)
	}
	return nil
}

func (s *otpStore) IncrementAttempts(ctx context.Context, email string) error {
	_, err := s.doc(email).Update(ctx, []firestore.Update{
		{Path: "attempts", Value: firestore.Increment(1)},
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to record attempt", err)
	}
	return nil
}

func (s *otpStore) Delete(ctx context.Context, email string) error {
	_, err := s.doc(email).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete verification", err)
	}
	return nil
}
