package dto

import "github.com/vglug/intake-backend/internal/models"

// AI provider names accepted by the widget generator.
const (
	ProviderVertex    = "vertex"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// GenerateWidgetRequest asks the agent to turn a natural-language
// question into a widget draft.
type GenerateWidgetRequest struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"`
}

// RefineWidgetRequest revises an existing draft with a follow-up
// instruction.
type RefineWidgetRequest struct {
	Prompt   string          `json:"prompt"`
	Provider string          `json:"provider,omitempty"`
	Current  GeneratedWidget `json:"current"`
}

// GeneratedWidget is an unsaved widget draft. Its config has already
// passed validation; saving it goes through the normal widget create
// path.
type GeneratedWidget struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	WidgetType  string              `json:"widget_type"`
	Config      models.WidgetConfig `json:"config"`
	Explanation string              `json:"explanation,omitempty"`
}
