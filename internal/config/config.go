package config

import (
	"os"

	"github.com/vglug/intake-backend/internal/dto"
)

type Config struct {
	ProjectID      string
	Region         string
	LogLevel       string
	DBPath         string
	KMSKeyName     string
	VertexModel    string
	AnthropicModel string
	OpenAIModel    string
	AIProvider     string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
}

func New() *Config {
	return &Config{
		ProjectID:      os.Getenv("PROJECTID"),
		Region:         os.Getenv("REGION"),
		LogLevel:       os.Getenv("LOGLEVEL"),
		DBPath:         getDBPath(os.Getenv("DBPATH")),
		KMSKeyName:     os.Getenv("KMSKEYNAME"),
		VertexModel:    os.Getenv("VERTEXMODEL"),
		AnthropicModel: os.Getenv("ANTHROPICMODEL"),
		OpenAIModel:    os.Getenv("OPENAIMODEL"),
		AIProvider:     getAIProvider(os.Getenv("AIPROVIDER")),
		SMTPHost:       os.Getenv("SMTPHOST"),
		SMTPPort:       os.Getenv("SMTPPORT"),
		SMTPUsername:   os.Getenv("SMTPUSERNAME"),
		SMTPPassword:   os.Getenv("SMTPPASSWORD"),
		SMTPFrom:       os.Getenv("SMTPFROM"),
	}
}

func getDBPath(path string) string {
	if path == "" {
		return "intake.db"
	}
	return path
}

func getAIProvider(provider string) string {
	switch provider {
	case "anthropic":
		return dto.ProviderAnthropic
	case "openai":
		return dto.ProviderOpenAI
	default: // "vertex"
		return dto.ProviderVertex
	}
}
