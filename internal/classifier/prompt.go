package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const systemPrompt = "Eres un clasificador de prioridad de tickets. Respondes solo con JSON válido."

const userPromptTemplate = `Eres un asistente de clasificación de tickets de soporte.
Analiza el siguiente ticket y clasifica su prioridad en: high, medium o low.

Título: %s
Descripción: %s

Redacta la explicación en español corto siguiendo este estilo: describe el tipo de situación y menciona explícitamente las palabras o frases que activaron la clasificación, por ejemplo:
- Problema de inicio de sesión detectado por 'no puedo iniciar sesión' y 'contraseña'.
- Solicitud de actualización de contenido detectada por 'logo' y 'nuevo'.
- Bug de duplicación detectado por 'duplicadas' y 'notificaciones'.
- Error financiero detectado por 'reembolso incorrecto' y 'monto'.
- Petición de formación detectada por 'necesita una sesión' y 'actualización'.
Ajusta la redacción al contexto del ticket analizado.

Responde SOLO con un JSON en este formato:
{
  "priority": "high|medium|low",
  "explanation": "Breve explicación de por qué se asignó esta prioridad"
}`

const defaultModelExplanation = "Clasificado por el modelo"

var errNotSingleObject = errors.New("model response is not a single JSON object")

func buildUserPrompt(title, description string) string {
	return fmt.Sprintf(userPromptTemplate, title, description)
}

type modelAnswer struct {
	Priority    *string `json:"priority"`
	Explanation *string `json:"explanation"`
	Prioridad   *string `json:"prioridad"`
	Explicacion *string `json:"explicacion"`
}

// parseModelResponse decodes the model answer. A missing or unknown priority
// becomes medium; malformed JSON is an error.
func parseModelResponse(raw string) (Result, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if !strings.HasPrefix(text, "{") {
		return Result{}, errNotSingleObject
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var answer modelAnswer
	if err := dec.Decode(&answer); err != nil {
		return Result{}, fmt.Errorf("decode model response: %w", err)
	}
	if dec.More() {
		return Result{}, errNotSingleObject
	}

	priority := domain.TicketPriorityMedium
	if p, ok := normalizePriority(firstNonNil(answer.Priority, answer.Prioridad)); ok {
		priority = p
	}

	explanation := defaultModelExplanation
	if e := firstNonNil(answer.Explanation, answer.Explicacion); strings.TrimSpace(e) != "" {
		explanation = strings.TrimSpace(e)
	}

	return Result{Priority: priority, Explanation: explanation, Origin: domain.OriginModel}, nil
}

// stripCodeFence drops a leading ``` line and a trailing ``` line.
func stripCodeFence(text string) string {
	if strings.HasPrefix(text, "```") {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	if strings.HasSuffix(text, "```") {
		if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
			text = text[:idx]
		} else {
			text = strings.TrimSuffix(text, "```")
		}
	}
	return strings.TrimSpace(text)
}

var spanishPriorities = map[string]domain.TicketPriority{
	"alta":  domain.TicketPriorityHigh,
	"media": domain.TicketPriorityMedium,
	"baja":  domain.TicketPriorityLow,
}

func normalizePriority(raw string) (domain.TicketPriority, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if p := domain.TicketPriority(value); p.Valid() {
		return p, true
	}
	p, ok := spanishPriorities[value]
	return p, ok
}

func firstNonNil(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}
