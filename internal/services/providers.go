package services

import (
	"context"

	"github.com/vglug/intake-backend/internal/dto"
)

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

// vertexGenerator adapts the Vertex AI client to the Generator seam the
// agent uses, so Vertex plugs in next to the plain REST providers.
type vertexGenerator struct {
	client vertexClient
}

func NewVertexGenerator(client vertexClient) Generator {
	return &vertexGenerator{client: client}
}

func (g *vertexGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.GenerateContent(ctx, dto.VertexGenerateRequest{
		System:      system,
		UserMessage: user,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
