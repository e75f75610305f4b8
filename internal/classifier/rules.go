package classifier

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Keyword order is precedence: the first listed keyword found wins.
var highKeywords = []string{
	"urgente", "crítico", "producción", "caído", "bloqueado", "bloqueo",
	"no funciona", "error crítico", "impacto alto", "emergencia", "inmediato",
	"urgent", "critical", "production", "down", "blocked", "emergency",
}

var mediumKeywords = []string{
	"problema", "error", "bug", "fallo", "no se aplica", "lentitud",
	"rendimiento", "acceso", "permisos", "solicitud",
	"problem", "slow", "access", "permissions",
}

const lowExplanation = "No se detectaron palabras clave de urgencia; prioridad baja por defecto."

// Rules classifies by scanning the lower-cased title and description for
// keywords. It is deterministic and never fails.
func Rules(title, description string) Result {
	text := strings.ToLower(title + " " + description)

	for _, keyword := range highKeywords {
		if strings.Contains(text, keyword) {
			return Result{
				Priority:    domain.TicketPriorityHigh,
				Explanation: fmt.Sprintf("Palabra clave %q indica severidad alta.", keyword),
				Origin:      domain.OriginRules,
			}
		}
	}

	for _, keyword := range mediumKeywords {
		if strings.Contains(text, keyword) {
			return Result{
				Priority:    domain.TicketPriorityMedium,
				Explanation: fmt.Sprintf("Palabra clave %q sugiere prioridad media.", keyword),
				Origin:      domain.OriginRules,
			}
		}
	}

	return Result{
		Priority:    domain.TicketPriorityLow,
		Explanation: lowExplanation,
		Origin:      domain.OriginRules,
	}
}
