package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/classifier"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	minPageLimit = 1
	maxPageLimit = 500
)

// Classifier suggests a priority for a ticket. Implementations never fail.
type Classifier interface {
	Classify(ctx context.Context, title, description string) classifier.Result
}

// AuditRecorder appends audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, in audit.Input) (*domain.AuditEntry, error)
	RecordCreate(ctx context.Context, ticket *domain.Ticket, actorID string) (*domain.AuditEntry, error)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	tags        repository.TagRepository
	auditLog    repository.AuditRepository
	recorder    AuditRecorder
	assignments *AssignmentService
	classifier  Classifier
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	TagRepo     repository.TagRepository
	AuditRepo   repository.AuditRepository
	Recorder    AuditRecorder
	Assignments *AssignmentService
	Classifier  Classifier
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload. Empty enum values
// mean "not supplied".
type TicketCreateInput struct {
	Title         string
	Description   string
	State         domain.TicketState
	Priority      domain.TicketPriority
	AIPriority    domain.TicketPriority
	AIExplanation string
	AIOrigin      domain.ClassificationOrigin
	Assignee      string
	Tags          []string
}

// TicketPatch lists the fields an update may change. Nil fields are left as
// they are; an empty Assignee clears the assignment.
type TicketPatch struct {
	Title       *string
	Description *string
	State       *domain.TicketState
	Priority    *domain.TicketPriority
	Assignee    *string
}

// StateChange reports the outcome of a state transition.
type StateChange struct {
	Ticket        *domain.Ticket
	PreviousState domain.TicketState
	Changed       bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		tags:        deps.TagRepo,
		auditLog:    deps.AuditRepo,
		recorder:    deps.Recorder,
		assignments: deps.Assignments,
		classifier:  deps.Classifier,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateTicket validates and persists a new ticket. When no priority is given
// the classifier decides it; when a priority is given without an explanation
// the classifier only backfills the ai_* fields.
func (s *TicketService) CreateTicket(ctx context.Context, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := requireText(title, description); err != nil {
		return nil, err
	}
	if err := validateCreateEnums(input); err != nil {
		return nil, err
	}

	assigneeID, err := s.assignments.ResolveAssignee(ctx, input.Assignee)
	if err != nil {
		return nil, err
	}
	tags, err := s.ensureTags(ctx, input.Tags)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		State:       input.State,
		Priority:    input.Priority,
		AssigneeID:  assigneeID,
		Tags:        tags,
	}
	if ticket.State == "" {
		ticket.State = domain.TicketStateNew
	}

	explanation := strings.TrimSpace(input.AIExplanation)
	switch {
	case input.Priority == "":
		result := s.classifier.Classify(ctx, title, description)
		ticket.Priority = result.Priority
		applyClassification(ticket, result)
	case explanation == "":
		applyClassification(ticket, s.classifier.Classify(ctx, title, description))
	default:
		manual := classifier.Manual(input.Priority, explanation)
		if input.AIPriority != "" {
			manual.Priority = input.AIPriority
		}
		if input.AIOrigin != "" {
			manual.Origin = input.AIOrigin
		}
		applyClassification(ticket, manual)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.recordAudit(ctx, ticket.ID, func(ctx context.Context) error {
		_, err := s.recorder.RecordCreate(ctx, ticket, actorID)
		return err
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			AIOrigin: ticket.AIOrigin,
		},
	})

	return s.GetTicket(ctx, ticket.ID)
}

// GetTicket loads one ticket. Unknown or malformed ids are reported as not
// found.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ticketNotFound(id)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ticketNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", id, err)
	}
	return ticket, nil
}

// ListTickets returns tickets newest first.
func (s *TicketService) ListTickets(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	limit, offset = ClampPage(limit, offset)
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// UpdateTicket applies a patch and audits every tracked field whose value
// changed.
func (s *TicketService) UpdateTicket(ctx context.Context, actorID, id string, patch TicketPatch) (*domain.Ticket, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.applyPatch(ctx, actorID, ticket, patch); err != nil {
		return nil, err
	}
	return s.GetTicket(ctx, id)
}

// ChangeState moves a ticket to state. Moving to the current state is a no-op
// that writes nothing.
func (s *TicketService) ChangeState(ctx context.Context, actorID, id string, state domain.TicketState) (*StateChange, error) {
	if !state.Valid() {
		return nil, apperrors.NewInvalidChoice("state", stateNames())
	}
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := ticket.State
	changed, err := s.applyPatch(ctx, actorID, ticket, TicketPatch{State: &state})
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		if ticket, err = s.GetTicket(ctx, id); err != nil {
			return nil, err
		}
	}
	return &StateChange{Ticket: ticket, PreviousState: previous, Changed: len(changed) > 0}, nil
}

// MarkNew moves the ticket back to new.
func (s *TicketService) MarkNew(ctx context.Context, actorID, id string) (*StateChange, error) {
	return s.ChangeState(ctx, actorID, id, domain.TicketStateNew)
}

// StartProgress moves the ticket to in_progress.
func (s *TicketService) StartProgress(ctx context.Context, actorID, id string) (*StateChange, error) {
	return s.ChangeState(ctx, actorID, id, domain.TicketStateInProgress)
}

// Resolve moves the ticket to resolved.
func (s *TicketService) Resolve(ctx context.Context, actorID, id string) (*StateChange, error) {
	return s.ChangeState(ctx, actorID, id, domain.TicketStateResolved)
}

// Cancel moves the ticket to cancelled.
func (s *TicketService) Cancel(ctx context.Context, actorID, id string) (*StateChange, error) {
	return s.ChangeState(ctx, actorID, id, domain.TicketStateCancelled)
}

// RecalculatePriority reclassifies the ticket and overwrites its priority and
// ai_* fields.
func (s *TicketService) RecalculatePriority(ctx context.Context, actorID, id string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireText(ticket.Title, ticket.Description); err != nil {
		return nil, err
	}

	result := s.classifier.Classify(ctx, ticket.Title, ticket.Description)
	oldPriority := ticket.Priority
	ticket.Priority = result.Priority
	applyClassification(ticket, result)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ticketNotFound(id)
		}
		return nil, fmt.Errorf("update ticket %s: %w", id, err)
	}

	if oldPriority != ticket.Priority {
		s.recordAudit(ctx, ticket.ID, func(ctx context.Context) error {
			_, err := s.recorder.Record(ctx, audit.Input{
				TicketID: ticket.ID,
				Field:    domain.FieldPriority,
				Old:      oldPriority,
				New:      ticket.Priority,
				ActorID:  actorID,
			})
			return err
		})
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticket.ID,
			ActorID:  actorID,
			Payload:  events.TicketPriorityChangedPayload{OldPriority: oldPriority, NewPriority: ticket.Priority},
		})
	}
	return s.GetTicket(ctx, id)
}

// ListTicketAudit returns the audit trail of one ticket, newest first. A nil
// or non-positive limit returns every entry.
func (s *TicketService) ListTicketAudit(ctx context.Context, id string, limit *int) ([]domain.AuditEntry, error) {
	if _, err := s.GetTicket(ctx, id); err != nil {
		return nil, err
	}
	filter := repository.AuditFilter{TicketID: &id}
	if limit != nil && *limit > 0 {
		filter.Limit, _ = ClampPage(*limit, 0)
	}
	entries, err := s.auditLog.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audit of ticket %s: %w", id, err)
	}
	return entries, nil
}

// ListAudit returns audit entries across tickets, newest first.
func (s *TicketService) ListAudit(ctx context.Context, ticketID *string, limit, offset int) ([]domain.AuditEntry, error) {
	if ticketID != nil {
		if _, err := uuid.Parse(*ticketID); err != nil {
			return nil, apperrors.NewValidationError("invalid value for 'ticket_id'; expected a UUID", map[string]any{"ticket_id": *ticketID})
		}
	}
	limit, offset = ClampPage(limit, offset)
	entries, err := s.auditLog.List(ctx, repository.AuditFilter{TicketID: ticketID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return entries, nil
}

// Analyze classifies a title and description without persisting anything.
func (s *TicketService) Analyze(ctx context.Context, title, description string) (classifier.Result, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := requireText(title, description); err != nil {
		return classifier.Result{}, err
	}
	return s.classifier.Classify(ctx, title, description), nil
}

// ClampPage bounds limit to [1,500] and offset to >= 0.
func ClampPage(limit, offset int) (int, int) {
	if limit < minPageLimit {
		limit = minPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type fieldChange struct {
	field domain.TrackedField
	old   any
	new   any
}

// applyPatch writes the patch to ticket and returns the tracked fields that
// changed. Nothing is written or audited when no field changes.
func (s *TicketService) applyPatch(ctx context.Context, actorID string, ticket *domain.Ticket, patch TicketPatch) ([]fieldChange, error) {
	var changes []fieldChange

	if patch.State != nil && *patch.State != ticket.State {
		changes = append(changes, fieldChange{domain.FieldState, ticket.State, *patch.State})
		ticket.State = *patch.State
	}
	if patch.Priority != nil && *patch.Priority != ticket.Priority {
		changes = append(changes, fieldChange{domain.FieldPriority, ticket.Priority, *patch.Priority})
		ticket.Priority = *patch.Priority
	}
	if patch.Assignee != nil {
		assigneeID, err := s.assignments.ResolveAssignee(ctx, *patch.Assignee)
		if err != nil {
			return nil, err
		}
		// A name that matches nobody is ignored rather than clearing the field.
		if assigneeID != nil || strings.TrimSpace(*patch.Assignee) == "" {
			if !sameID(ticket.AssigneeID, assigneeID) {
				changes = append(changes, fieldChange{domain.FieldAssignee, ticket.AssigneeID, assigneeID})
				ticket.AssigneeID = assigneeID
			}
		}
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title != ticket.Title {
			changes = append(changes, fieldChange{domain.FieldTitle, ticket.Title, title})
			ticket.Title = title
		}
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description != ticket.Description {
			changes = append(changes, fieldChange{domain.FieldDescription, ticket.Description, description})
			ticket.Description = description
		}
	}

	if len(changes) == 0 {
		return nil, nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ticketNotFound(ticket.ID)
		}
		return nil, fmt.Errorf("update ticket %s: %w", ticket.ID, err)
	}

	changes = inTrackedOrder(changes)

	// All audit entries are written before any event is published.
	fields := make([]domain.TrackedField, 0, len(changes))
	for _, change := range changes {
		fields = append(fields, change.field)
		s.recordAudit(ctx, ticket.ID, func(ctx context.Context) error {
			_, err := s.recorder.Record(ctx, audit.Input{
				TicketID: ticket.ID,
				Field:    change.field,
				Old:      change.old,
				New:      change.new,
				ActorID:  actorID,
			})
			return err
		})
	}
	for _, change := range changes {
		s.publishChange(ctx, actorID, ticket.ID, change)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload:  events.TicketUpdatedPayload{Fields: fields},
	})
	return changes, nil
}

// inTrackedOrder sorts changes by domain.TrackedFields.
func inTrackedOrder(changes []fieldChange) []fieldChange {
	ordered := make([]fieldChange, 0, len(changes))
	for _, field := range domain.TrackedFields {
		for _, change := range changes {
			if change.field == field {
				ordered = append(ordered, change)
			}
		}
	}
	return ordered
}

func (s *TicketService) publishChange(ctx context.Context, actorID, ticketID string, change fieldChange) {
	event := events.Event{TicketID: ticketID, ActorID: actorID}
	switch change.field {
	case domain.FieldState:
		event.Type = events.EventTicketStateChanged
		event.Payload = events.TicketStateChangedPayload{
			OldState: change.old.(domain.TicketState),
			NewState: change.new.(domain.TicketState),
		}
	case domain.FieldPriority:
		event.Type = events.EventTicketPriorityChanged
		event.Payload = events.TicketPriorityChangedPayload{
			OldPriority: change.old.(domain.TicketPriority),
			NewPriority: change.new.(domain.TicketPriority),
		}
	case domain.FieldAssignee:
		event.Type = events.EventTicketAssigned
		event.Payload = events.TicketAssignedPayload{
			OldAssigneeID: change.old.(*string),
			NewAssigneeID: change.new.(*string),
		}
	default:
		return
	}
	s.publishEvent(ctx, event)
}

// ensureTags finds or creates each named tag. Blank and repeated names are
// skipped.
func (s *TicketService) ensureTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]domain.Tag, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		tag, err := s.tags.GetByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			tag = &domain.Tag{Name: name}
			err = s.tags.Create(ctx, tag)
			if errors.Is(err, repository.ErrDuplicate) {
				tag, err = s.tags.GetByName(ctx, name)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("ensure tag %q: %w", name, err)
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// recordAudit runs write and logs a failure instead of returning it. Audit
// problems never fail the mutation that triggered them.
func (s *TicketService) recordAudit(ctx context.Context, ticketID string, write func(context.Context) error) {
	if s.recorder == nil {
		return
	}
	if err := write(ctx); err != nil {
		s.logger.Error("audit entry not recorded",
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func applyClassification(ticket *domain.Ticket, result classifier.Result) {
	priority := result.Priority
	explanation := result.Explanation
	origin := result.Origin
	ticket.AIPriority = &priority
	ticket.AIExplanation = &explanation
	ticket.AIOrigin = &origin
}

func requireText(title, description string) error {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFields(missing...)
	}
	return nil
}

func validateCreateEnums(input TicketCreateInput) error {
	if input.State != "" && !input.State.Valid() {
		return apperrors.NewInvalidChoice("state", stateNames())
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return apperrors.NewInvalidChoice("priority", priorityNames())
	}
	if input.AIPriority != "" && !input.AIPriority.Valid() {
		return apperrors.NewInvalidChoice("ai_priority", priorityNames())
	}
	if input.AIOrigin != "" && !input.AIOrigin.Valid() {
		return apperrors.NewInvalidChoice("ai_origin", originNames())
	}
	return nil
}

func validatePatch(patch TicketPatch) error {
	var missing []string
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		missing = append(missing, "title")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFields(missing...)
	}
	if patch.State != nil && !patch.State.Valid() {
		return apperrors.NewInvalidChoice("state", stateNames())
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return apperrors.NewInvalidChoice("priority", priorityNames())
	}
	return nil
}

func ticketNotFound(id string) error {
	return apperrors.NewNotFound("ticket", map[string]any{"id": id})
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stateNames() []string {
	names := make([]string, 0, len(domain.TicketStates))
	for _, s := range domain.TicketStates {
		names = append(names, string(s))
	}
	return names
}

func priorityNames() []string {
	names := make([]string, 0, len(domain.TicketPriorities))
	for _, p := range domain.TicketPriorities {
		names = append(names, string(p))
	}
	return names
}

func originNames() []string {
	names := make([]string, 0, len(domain.ClassificationOrigins))
	for _, o := range domain.ClassificationOrigins {
		names = append(names, string(o))
	}
	return names
}
