package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/classifier"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type testServer struct {
	app   *fiber.App
	users *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	metrics := observability.NewMetrics()
	authCfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}

	cls := classifier.New(nil, classifier.Options{}, logger)
	assignments := service.NewAssignmentService(service.AssignmentDependencies{UserRepo: store.Users(), Logger: logger})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets(),
		TagRepo:     store.Tags(),
		AuditRepo:   store.Audit(),
		Recorder:    audit.NewRecorder(store.Audit(), store.Users()),
		Assignments: assignments,
		Classifier:  cls,
		Dispatcher:  events.NewInMemoryDispatcher(logger),
		Logger:      logger,
	})
	authService := service.NewAuthService(authCfg, store.Users())

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			ServiceName: "helpdesk-service",
			Classifier:  cls,
			Metrics:     metrics,
		}),
		Tickets:         handlers.NewTicketsHandler(tickets),
		Audit:           handlers.NewAuditHandler(tickets),
		Users:           handlers.NewUsersHandler(authService, assignments),
		ActorMiddleware: auth.NewActorMiddleware(authService.TokenManager(), config.SystemUserID),
	})
	return &testServer{app: app, users: service.NewUserService(authCfg, store.Users())}
}

func (s *testServer) call(t *testing.T, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
	}
	return resp.StatusCode, out
}

func (s *testServer) createTicket(t *testing.T, title, description string) string {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"description":%q}`, title, description)
	status, out := s.call(t, "POST", "/api/support/ticket", body)
	if status != 200 {
		t.Fatalf("create: status %d body %v", status, out)
	}
	return out["id"].(string)
}

func errorMessage(t *testing.T, out map[string]any) string {
	t.Helper()
	errObj, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in %v", out)
	}
	return errObj["message"].(string)
}

func TestCreateTicketRaw(t *testing.T) {
	s := newTestServer(t)
	status, out := s.call(t, "POST", "/api/support/ticket",
		`{"title":"Error urgente","description":"bug en produccion","tags":["web","web"," "]}`)
	if status != 200 {
		t.Fatalf("status %d body %v", status, out)
	}
	if out["priority"] != "high" || out["ai_origin"] != "rules" || out["message"] != "ticket created" {
		t.Fatalf("body = %v", out)
	}
	if tags := out["tags"].([]any); len(tags) != 1 || tags[0] != "web" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		body string
		want string
	}{
		{`{}`, "missing required fields: title, description"},
		{``, "missing required fields: title, description"},
		{`{"title":"x"}`, "missing required fields: description"},
		{`{"title":"x","description":"y","priority":"urgent"}`, "invalid value for 'priority'; allowed: low, medium, high"},
		{`{"title":"x","description":"y","state":"closed"}`, "invalid value for 'state'; allowed: new, in_progress, resolved, cancelled"},
		{`{"title":"x","description":"y","assignee":"7d0c2f9e-2a4b-4c55-9f3e-1d1b7b3f0a11"}`, "unknown assignee"},
	}
	for _, tt := range tests {
		status, out := s.call(t, "POST", "/api/support/ticket", tt.body)
		if status != 400 {
			t.Errorf("%s: status %d", tt.body, status)
			continue
		}
		if got := errorMessage(t, out); got != tt.want {
			t.Errorf("%s: message %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestJSONRPCEnvelope(t *testing.T) {
	s := newTestServer(t)
	status, out := s.call(t, "POST", "/api/support/ticket",
		`{"jsonrpc":"2.0","id":3,"method":"call","params":{"title":"Solicitud de acceso","description":"necesito permisos"}}`)
	if status != 200 {
		t.Fatalf("status %d body %v", status, out)
	}
	if out["jsonrpc"] != "2.0" || out["id"] != float64(3) {
		t.Fatalf("envelope = %v", out)
	}
	result := out["result"].(map[string]any)
	if result["priority"] != "medium" {
		t.Fatalf("result = %v", result)
	}

	status, out = s.call(t, "POST", "/api/support/ticket",
		`{"jsonrpc":"2.0","id":4,"params":{"title":"only"}}`)
	if status != 400 || out["jsonrpc"] != "2.0" || out["id"] != float64(4) {
		t.Fatalf("status %d body %v", status, out)
	}
	errObj := out["error"].(map[string]any)
	if errObj["code"] != float64(400) {
		t.Fatalf("error = %v", errObj)
	}
}

func TestListTicketsPaging(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		s.createTicket(t, fmt.Sprintf("Consulta %d", i), "quisiera informacion")
	}

	tests := []struct {
		body  string
		count int
	}{
		{`{}`, 3},
		{`{"limit":0}`, 1},
		{`{"limit":"2"}`, 2},
		{`{"limit":10000,"offset":-5}`, 3},
		{`{"limit":3000000000.0}`, 3},
		{`{"limit":2,"offset":2}`, 1},
	}
	for _, tt := range tests {
		status, out := s.call(t, "POST", "/api/support/tickets", tt.body)
		if status != 200 {
			t.Fatalf("%s: status %d", tt.body, status)
		}
		if got := int(out["count"].(float64)); got != tt.count {
			t.Errorf("%s: count %d, want %d", tt.body, got, tt.count)
		}
	}

	status, out := s.call(t, "POST", "/api/support/tickets", `{"limit":"abc"}`)
	if status != 400 || errorMessage(t, out) != "invalid value for 'limit'" {
		t.Fatalf("status %d body %v", status, out)
	}

	status, out = s.call(t, "GET", "/api/support/tickets?limit=1", "")
	if status != 200 || out["count"] != float64(1) {
		t.Fatalf("query paging: status %d body %v", status, out)
	}
}

func TestUnknownTicket(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/api/support/ticket/8a7f1b4e-5f0a-4f8e-9d0c-3b9f1e2d4c5a",
		"/api/support/ticket/not-a-uuid",
		"/api/support/ticket/42/audit",
	} {
		status, out := s.call(t, "GET", path, "")
		if status != 404 {
			t.Errorf("%s: status %d body %v", path, status, out)
		}
	}
	status, _ := s.call(t, "POST", "/api/support/ticket/not-a-uuid/change_state", `{"state":"resolved"}`)
	if status != 404 {
		t.Fatalf("change_state on unknown ticket: %d", status)
	}
}

func TestChangeStateAndAudit(t *testing.T) {
	s := newTestServer(t)
	id := s.createTicket(t, "Sistema caido", "no responde")

	status, out := s.call(t, "POST", "/api/support/ticket/"+id+"/change_state", `{"state":"in_progress"}`)
	if status != 200 {
		t.Fatalf("status %d body %v", status, out)
	}
	if out["previous_state"] != "new" || out["current_state"] != "in_progress" || out["changed"] != true {
		t.Fatalf("body = %v", out)
	}

	status, out = s.call(t, "POST", "/api/support/ticket/"+id+"/action/start_progress", "")
	if status != 200 || out["changed"] != false {
		t.Fatalf("repeat transition: status %d body %v", status, out)
	}

	status, out = s.call(t, "GET", "/api/support/ticket/"+id+"/audit", "")
	if status != 200 {
		t.Fatalf("audit status %d", status)
	}
	if out["count"] != float64(2) {
		t.Fatalf("audit = %v", out)
	}
	latest := out["audit"].([]any)[0].(map[string]any)
	if latest["field_name"] != "state" || latest["change_type"] != "state_change" || latest["user_name"] != "Sistema" {
		t.Fatalf("latest entry = %v", latest)
	}

	status, out = s.call(t, "GET", "/api/support/audit?ticket_id="+id+"&limit=1", "")
	if status != 200 || out["count"] != float64(1) {
		t.Fatalf("global audit: status %d body %v", status, out)
	}
	if row := out["audit"].([]any)[0].(map[string]any); row["ticket_title"] != "Sistema caido" {
		t.Fatalf("row = %v", row)
	}

	status, out = s.call(t, "POST", "/api/support/audit", `{"ticket_id":"nope"}`)
	if status != 400 || errorMessage(t, out) != "invalid value for 'ticket_id'; expected a UUID" {
		t.Fatalf("status %d body %v", status, out)
	}
}

func TestRunActionRejectsUnknownAction(t *testing.T) {
	s := newTestServer(t)
	id := s.createTicket(t, "Consulta", "quisiera informacion")
	status, out := s.call(t, "POST", "/api/support/ticket/"+id+"/action/reopen", "")
	if status != 400 {
		t.Fatalf("status %d body %v", status, out)
	}

	status, out = s.call(t, "POST", "/api/support/ticket/"+id+"/action/recalculate_priority", "")
	if status != 200 || out["priority"] != "low" {
		t.Fatalf("recalculate: status %d body %v", status, out)
	}
}

func TestUpdateTicket(t *testing.T) {
	s := newTestServer(t)
	id := s.createTicket(t, "Consulta", "quisiera informacion")

	status, out := s.call(t, "POST", "/api/support/ticket/"+id+"/update", `{"priority":"high","title":"Consulta urgente"}`)
	if status != 200 {
		t.Fatalf("status %d body %v", status, out)
	}
	if out["priority"] != "high" || out["title"] != "Consulta urgente" {
		t.Fatalf("body = %v", out)
	}

	_, out = s.call(t, "POST", "/api/support/ticket/"+id+"/audit", `{"limit":"10"}`)
	if out["count"] != float64(3) {
		t.Fatalf("audit = %v", out)
	}
}

func TestLoginAndBearerActor(t *testing.T) {
	s := newTestServer(t)
	user, err := s.users.CreateUser(context.Background(), service.UserCreateInput{
		Name: "Ana Perez", Email: "ana@example.com", Login: "ana", Password: "s3cret", Active: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	status, out := s.call(t, "POST", "/api/support/login", `{"login":"ana","password":"wrong"}`)
	if status != 401 {
		t.Fatalf("bad password: status %d", status)
	}

	status, out = s.call(t, "POST", "/api/support/login", `{"login":"ana","password":"s3cret"}`)
	if status != 200 {
		t.Fatalf("login: status %d body %v", status, out)
	}
	token := out["token"].(string)

	status, out = s.call(t, "POST", "/api/support/ticket",
		`{"title":"Consulta","description":"quisiera informacion","assignee":"Ana Perez"}`,
		"Authorization", "Bearer "+token)
	if status != 200 {
		t.Fatalf("create: status %d body %v", status, out)
	}
	id := out["id"].(string)

	_, out = s.call(t, "GET", "/api/support/ticket/"+id, "")
	if out["assignee_id"] != user.ID || out["assignee"] != "Ana Perez" {
		t.Fatalf("ticket = %v", out)
	}
	_, out = s.call(t, "GET", "/api/support/ticket/"+id+"/audit", "")
	entry := out["audit"].([]any)[0].(map[string]any)
	if entry["user_id"] != user.ID || entry["change_type"] != "create" {
		t.Fatalf("entry = %v", entry)
	}

	status, _ = s.call(t, "POST", "/api/support/tickets", `{}`, "Authorization", "Bearer garbage")
	if status != 401 {
		t.Fatalf("bad token: status %d", status)
	}
}

func TestAssignees(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for _, in := range []service.UserCreateInput{
		{Name: "Zoe", Login: "zoe", Password: "pw", Active: true},
		{Name: "Bruno", Login: "bruno", Password: "pw", Active: true},
		{Name: "Carla", Login: "carla", Password: "pw", Active: false},
	} {
		if _, err := s.users.CreateUser(ctx, in); err != nil {
			t.Fatalf("CreateUser %s: %v", in.Login, err)
		}
	}

	_, out := s.call(t, "POST", "/api/support/assignees", `{}`)
	records := out["records"].([]any)
	if len(records) != 2 || records[0].(map[string]any)["name"] != "Bruno" {
		t.Fatalf("active assignees = %v", records)
	}

	_, out = s.call(t, "POST", "/api/support/assignees", `{"only_active":false,"limit":"2"}`)
	records = out["records"].([]any)
	if len(records) != 2 || records[1].(map[string]any)["name"] != "Carla" {
		t.Fatalf("all assignees = %v", records)
	}
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t)
	status, out := s.call(t, "POST", "/api/support/analyze", `{"title":"urgente","description":"bug"}`)
	if status != 200 || out["priority"] != "high" || out["origin"] != "rules" {
		t.Fatalf("status %d body %v", status, out)
	}
}

func TestUnknownRouteAndHealth(t *testing.T) {
	s := newTestServer(t)
	status, out := s.call(t, "GET", "/nowhere", "")
	if status != 404 {
		t.Fatalf("status %d body %v", status, out)
	}

	status, out = s.call(t, "GET", "/health/ready", "")
	if status != 200 {
		t.Fatalf("ready status %d body %v", status, out)
	}
	cls := out["classifier"].(map[string]any)
	if cls["mode"] != "rules" {
		t.Fatalf("classifier = %v", cls)
	}
	deps := out["dependencies"].(map[string]any)
	if deps["postgres"] != "disabled" || deps["redis"] != "disabled" {
		t.Fatalf("dependencies = %v", deps)
	}
}
