package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/llm"
)

type stubProvider struct {
	content string
	err     error
	calls   []llm.CompletionRequest
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func TestRules(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        domain.TicketPriority
		keyword     string
	}{
		{"fallen system", "Sistema caído", "no responde", domain.TicketPriorityHigh, "caído"},
		{"access request", "Solicitud de acceso", "necesito permisos", domain.TicketPriorityMedium, "acceso"},
		{"general question", "Consulta general", "quisiera informacion", domain.TicketPriorityLow, ""},
		{"high beats medium", "bug en factura", "es urgente", domain.TicketPriorityHigh, "urgente"},
		{"case insensitive", "URGENTE", "revisar", domain.TicketPriorityHigh, "urgente"},
		{"list order decides", "Emergencia", "producción detenida", domain.TicketPriorityHigh, "producción"},
		{"english keywords", "Checkout slow", "pages take ages", domain.TicketPriorityMedium, "slow"},
		{"multi word keyword", "Impresora", "no funciona desde ayer", domain.TicketPriorityHigh, "no funciona"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rules(tt.title, tt.description)
			if got.Priority != tt.want {
				t.Fatalf("Priority = %q, want %q (%s)", got.Priority, tt.want, got.Explanation)
			}
			if got.Origin != domain.OriginRules {
				t.Errorf("Origin = %q, want rules", got.Origin)
			}
			if tt.keyword != "" && !strings.Contains(got.Explanation, `"`+tt.keyword+`"`) {
				t.Errorf("Explanation %q does not name %q", got.Explanation, tt.keyword)
			}
			if tt.keyword == "" && got.Explanation != lowExplanation {
				t.Errorf("Explanation = %q", got.Explanation)
			}
		})
	}
}

func TestParseModelResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.TicketPriority
		explain string
		wantErr bool
	}{
		{"plain", `{"priority":"high","explanation":"Caída detectada por 'caído'."}`, domain.TicketPriorityHigh, "Caída detectada por 'caído'.", false},
		{"fenced", "```json\n{\"priority\": \"low\", \"explanation\": \"Consulta.\"}\n```", domain.TicketPriorityLow, "Consulta.", false},
		{"spanish keys", `{"prioridad":"Alta","explicacion":"Bloqueo."}`, domain.TicketPriorityHigh, "Bloqueo.", false},
		{"unknown priority", `{"priority":"critical","explanation":"x"}`, domain.TicketPriorityMedium, "x", false},
		{"missing priority", `{"explanation":"x"}`, domain.TicketPriorityMedium, "x", false},
		{"missing explanation", `{"priority":"medium"}`, domain.TicketPriorityMedium, defaultModelExplanation, false},
		{"prose", `La prioridad es alta`, "", "", true},
		{"two objects", `{"priority":"low"} {"priority":"high"}`, "", "", true},
		{"array", `[{"priority":"low"}]`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseModelResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseModelResponse: %v", err)
			}
			if got.Priority != tt.want || got.Explanation != tt.explain || got.Origin != domain.OriginModel {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestClassifyWithoutProviderUsesRules(t *testing.T) {
	c := New(nil, Options{}, nil)
	got := c.Classify(context.Background(), "Sistema caído", "no responde")
	if got.Origin != domain.OriginRules || got.Priority != domain.TicketPriorityHigh {
		t.Fatalf("got %+v", got)
	}
	if c.Status().Mode != domain.OriginRules {
		t.Errorf("Status = %+v", c.Status())
	}
}

func TestClassifyUsesModel(t *testing.T) {
	provider := &stubProvider{content: `{"priority":"low","explanation":"Consulta informativa."}`}
	c := New(provider, Options{Model: "gpt-3.5-turbo", Temperature: 0.3}, nil)

	got := c.Classify(context.Background(), "Sistema caído", "no responde")
	if got.Origin != domain.OriginModel || got.Priority != domain.TicketPriorityLow {
		t.Fatalf("got %+v", got)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("calls = %d", len(provider.calls))
	}
	req := provider.calls[0]
	if req.Model != "gpt-3.5-turbo" || req.MaxTokens != 150 {
		t.Errorf("request = %+v", req)
	}
	if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Sistema caído") {
		t.Errorf("prompt missing ticket title: %+v", req.Messages)
	}
	if st := c.Status(); st.Mode != domain.OriginModel || st.Provider != "stub" {
		t.Errorf("Status = %+v", st)
	}
}

func TestClassifyFallsBackOnProviderError(t *testing.T) {
	c := New(&stubProvider{err: errors.New("connection refused")}, Options{}, nil)
	got := c.Classify(context.Background(), "Solicitud de acceso", "necesito permisos")
	if got.Origin != domain.OriginRules || got.Priority != domain.TicketPriorityMedium {
		t.Fatalf("got %+v", got)
	}
}

func TestClassifyFallsBackOnGarbage(t *testing.T) {
	c := New(&stubProvider{content: "no sé"}, Options{}, nil)
	got := c.Classify(context.Background(), "Consulta general", "quisiera informacion")
	if got.Origin != domain.OriginRules || got.Priority != domain.TicketPriorityLow {
		t.Fatalf("got %+v", got)
	}
}

func TestManual(t *testing.T) {
	got := Manual(domain.TicketPriorityHigh, "dado por el cliente")
	if got.Origin != domain.OriginManual || got.Priority != domain.TicketPriorityHigh {
		t.Fatalf("got %+v", got)
	}
}

func TestFromConfigStatus(t *testing.T) {
	rules := FromConfig(config.ClassifierConfig{Model: "gpt-3.5-turbo"}, nil)
	if got := rules.Status(); got.Mode != domain.OriginRules || got.Provider != "" {
		t.Fatalf("Status without key = %+v", got)
	}

	model := FromConfig(config.ClassifierConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}, nil)
	got := model.Status()
	if got.Mode != domain.OriginModel || got.Provider != "openai" || got.Model != "gpt-4o-mini" {
		t.Fatalf("Status with key = %+v", got)
	}
}
