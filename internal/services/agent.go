package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vglug/intake-backend/internal/catalog"
	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/query"
	"github.com/vglug/intake-backend/pkg/logger"
)

// Generator is one AI text provider. Providers are interchangeable:
// each takes a system prompt and a user message and returns text that
// should contain a single JSON object.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type agentService struct {
	providers       map[string]Generator
	defaultProvider string
}

func NewAgentService(providers map[string]Generator, defaultProvider string) *agentService {
	return &agentService{providers: providers, defaultProvider: defaultProvider}
}

// GenerateWidget turns a natural-language question into a validated
// widget draft. Drafts that fail catalog validation are rejected, never
// returned to the caller.
func (s *agentService) GenerateWidget(ctx context.Context, req dto.GenerateWidgetRequest) (dto.GeneratedWidget, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return dto.GeneratedWidget{}, errs.NewValidationError("prompt is required")
	}
	gen, name, err := s.provider(req.Provider)
	if err != nil {
		return dto.GeneratedWidget{}, err
	}

	text, err := gen.Generate(ctx, schemaPrompt(), req.Prompt)
	if err != nil {
		return dto.GeneratedWidget{}, err
	}
	return s.acceptDraft(ctx, name, text)
}

// RefineWidget revises an existing draft with a follow-up instruction.
// The current draft rides along in the user message so providers stay
// stateless.
func (s *agentService) RefineWidget(ctx context.Context, req dto.RefineWidgetRequest) (dto.GeneratedWidget, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return dto.GeneratedWidget{}, errs.NewValidationError("prompt is required")
	}
	gen, name, err := s.provider(req.Provider)
	if err != nil {
		return dto.GeneratedWidget{}, err
	}

	current, err := json.Marshal(req.Current)
	if err != nil {
		return dto.GeneratedWidget{}, err
	}
	user := fmt.Sprintf("Here is the current widget definition:\n%s\n\nRevise it according to this instruction: %s", current, req.Prompt)

	text, err := gen.Generate(ctx, schemaPrompt(), user)
	if err != nil {
		return dto.GeneratedWidget{}, err
	}
	return s.acceptDraft(ctx, name, text)
}

func (s *agentService) provider(name string) (Generator, string, error) {
	if name == "" {
		name = s.defaultProvider
	}
	gen, ok := s.providers[name]
	if !ok {
		return nil, "", errs.NewValidationError("unknown AI provider: " + name)
	}
	return gen, name, nil
}

// acceptDraft parses the model's reply and runs the config through the
// same validator saved widgets go through.
func (s *agentService) acceptDraft(ctx context.Context, provider, text string) (dto.GeneratedWidget, error) {
	log := logger.FromContext(ctx)

	draft, err := parseGeneratedWidget(text)
	if err != nil {
		log.Error("agent reply could not be parsed", "provider", provider, "error", err)
		return dto.GeneratedWidget{}, errs.NewExternalServiceError(provider, "the model did not return a usable widget definition", true)
	}
	if err := validateWidgetType(draft.WidgetType); err != nil {
		return dto.GeneratedWidget{}, err
	}
	if res := query.Validate(draft.Config); !res.Valid {
		log.Warn("agent produced invalid widget config", "provider", provider, "issues", res.Issues)
		return dto.GeneratedWidget{}, errs.NewValidationIssues(res.Issues)
	}
	log.Info("widget draft generated", "provider", provider, "widget_type", draft.WidgetType)
	return draft, nil
}

// parseGeneratedWidget extracts the first JSON object from model
// output, tolerating markdown code fences around it.
func parseGeneratedWidget(text string) (dto.GeneratedWidget, error) {
	cleaned := strings.TrimSpace(text)
	if i := strings.Index(cleaned, "```"); i >= 0 {
		cleaned = cleaned[i+3:]
		cleaned = strings.TrimPrefix(cleaned, "json")
		if j := strings.Index(cleaned, "```"); j >= 0 {
			cleaned = cleaned[:j]
		}
	}
	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return dto.GeneratedWidget{}, fmt.Errorf("no JSON object in model output")
	}

	var draft dto.GeneratedWidget
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &draft); err != nil {
		return dto.GeneratedWidget{}, fmt.Errorf("decode widget draft: %w", err)
	}
	return draft, nil
}

// schemaPrompt renders the catalog into the system prompt so the model
// only references real tables and columns.
func schemaPrompt() string {
	var b strings.Builder
	b.WriteString("You design dashboard widgets for a student application intake system. ")
	b.WriteString("Respond with exactly one JSON object and nothing else, shaped as: ")
	b.WriteString(`{"title": string, "description": string, "widget_type": one of `)
	b.WriteString(`"pie"|"bar"|"line"|"number"|"table"`)
	b.WriteString(`, "config": {"data_source": {"base_table": "application", "joins": [table...]}, `)
	b.WriteString(`"fields": [{"table", "column", "alias", "aggregation"}], `)
	b.WriteString(`"conditions": [{"logic": "AND"|"OR", "table", "column", "operator", "value"}], `)
	b.WriteString(`"group_by": ["table.column"], "order_by": [{"column": alias, "direction": "ASC"|"DESC"}], "limit": int, `)
	b.WriteString(`"chart_config": {"name_field": alias, "value_field": alias}}, "explanation": string}`)
	b.WriteString("\n\nRules: the base table is always \"application\"; every other table joins it by candidate_id and must be listed in joins. ")
	b.WriteString("Aggregations are COUNT, SUM, AVG, MIN, MAX. When any field is aggregated, every plain field must appear in group_by. ")
	b.WriteString("Operators are =, !=, <, >, <=, >=, LIKE, NOT LIKE, IN, NOT IN, IS NULL, IS NOT NULL.\n\nTables and columns:\n")

	for _, t := range catalog.Tables() {
		b.WriteString("- ")
		b.WriteString(t.Name)
		b.WriteString(": ")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(" (")
			b.WriteString(string(f.Type))
			if len(f.Values) > 0 {
				b.WriteString("; one of ")
				b.WriteString(strings.Join(f.Values, "|"))
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return b.String()
}
