package store

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vglug/intake-backend/internal/errs"
)

// Secrets path
// projects/{project}/secrets/ai-api-key-{provider}/versions/latest

type aiSecretsStore struct {
	client    *secretmanager.Client
	projectID string
	prefix    string
}

func NewAISecretsStore(client *secretmanager.Client, projectID string) *aiSecretsStore {
	return &aiSecretsStore{
		client:    client,
		projectID: projectID,
		prefix:    "ai-api-key",
	}
}

func (s *aiSecretsStore) secretName(provider string) string {
	return fmt.Sprintf("projects/%s/secrets/%s-%s", s.projectID, s.prefix, provider)
}

// GetAPIKey fetches the latest API key for an AI provider. Keys are
// rotated by adding secret versions, never by redeploying.
func (s *aiSecretsStore) GetAPIKey(ctx context.Context, provider string) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName(provider)),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", errs.NewNotFoundError("no API key configured for provider " + provider)
		}
		return "", errs.NewExternalServiceError("secretmanager", "failed to access API key", false)
	}
	return string(res.Payload.Data), nil
}
