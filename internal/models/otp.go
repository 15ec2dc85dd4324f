package models

import "time"

// OTPVerification tracks an email verification code. The code itself is
// stored encrypted; only the service layer ever sees plaintext.
type OTPVerification struct {
	Email          string    `firestore:"email" json:"email"`
	CodeCiphertext string    `firestore:"codeCiphertext" json:"-"`
	CreatedAt      time.Time `firestore:"createdAt" json:"created_at"`
	ExpiresAt      time.Time `firestore:"expiresAt" json:"expires_at"`
	Verified       bool      `firestore:"verified" json:"verified"`
	Attempts       int       `firestore:"attempts" json:"attempts"`
}
