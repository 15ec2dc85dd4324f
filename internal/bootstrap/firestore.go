package bootstrap

import (
	"context"

	"cloud.google.com/go/firestore"
)

// InitFirestore connects the client that backs widget configs and OTP
// records.
func InitFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	return firestore.NewClient(ctx, projectID)
}
