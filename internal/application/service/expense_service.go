package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ListFilter selects one of the three manager views
type ListFilter int

const (
	// PendingIndividual selects pending requests with no group attached
	PendingIndividual ListFilter = iota
	// PendingGroup selects pending requests attached to a group
	PendingGroup
	// Decided selects requests that left the pending status
	Decided
)

// CreateInput is the payload for a new expense request
type CreateInput struct {
	Description string
	Amount      float64
	Category    string
	Status      string
	UserID      string
	GroupID     *string
}

// ExpenseService is the workflow engine: it validates and applies status
// transitions and owns the at-most-once decision-notification contract.
type ExpenseService interface {
	Create(ctx context.Context, input CreateInput) (*entity.ExpenseRequest, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.ExpenseRequest, error)
	Decide(ctx context.Context, id string, status workflow.Status) (*entity.ExpenseRequest, error)
	EmployeesWithExpenses(ctx context.Context) ([]*entity.EmployeeExpenses, error)
}

type expenseServiceImpl struct {
	expenseRepo      port.ExpenseRepository
	userRepo         port.UserRepository
	notificationRepo port.NotificationRepository
	mailSender       port.MailSender
	logger           Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	userRepo port.UserRepository,
	notificationRepo port.NotificationRepository,
	mailSender port.MailSender,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo:      expenseRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		mailSender:       mailSender,
		logger:           logger,
	}
}

// Create validates the payload and persists a new request with status
// pending. Validation is ordered; the first failing field wins.
func (s *expenseServiceImpl) Create(ctx context.Context, input CreateInput) (*entity.ExpenseRequest, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	// Resolve the requester once, at creation time. Name and email are
	// denormalized onto the record so the decision path never re-fetches.
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, &ValidationError{Field: "user", Message: "User not found"}
		}
		s.logger.Error("Failed to resolve requester", "error", err, "user_id", input.UserID)
		return nil, fmt.Errorf("resolve requester: %w", err)
	}

	now := time.Now().UTC()
	expense := &entity.ExpenseRequest{
		ID:             uuid.NewString(),
		RequesterID:    user.ID,
		RequesterName:  user.Name,
		RequesterEmail: user.Email,
		Description:    strings.TrimSpace(input.Description),
		Amount:         input.Amount,
		Category:       input.Category,
		SubmittedDate:  now,
		GroupID:        input.GroupID,
		Status:         workflow.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		s.logger.Error("Failed to persist expense request", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("create expense request: %w", err)
	}

	s.logger.Info("Expense request created",
		"expense_id", expense.ID,
		"user_id", user.ID,
		"amount", expense.Amount,
		"group", expense.IsGroupExpense(),
	)

	return expense, nil
}

// validateCreateInput checks fields in contract order: description, amount,
// category, status, user.
func validateCreateInput(input CreateInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return &ValidationError{Field: "description", Message: "Description is required"}
	}
	if input.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "Amount must be a positive number"}
	}
	if input.Category == "" {
		return &ValidationError{Field: "category", Message: "Category is required"}
	}
	// Status may be omitted; anything supplied must be a known status. The
	// stored record is always pending regardless.
	if input.Status != "" && !workflow.Status(input.Status).IsValid() {
		return &ValidationError{Field: "status", Message: "Invalid status"}
	}
	if input.UserID == "" {
		return &ValidationError{Field: "user", Message: "User ID is required"}
	}
	return nil
}

// List returns one of the manager views. An empty individual pending view is
// a domain condition (ErrNoPendingExpenses); the other views return empty
// lists. Store failures are wrapped in ErrStoreUnavailable on every view.
func (s *expenseServiceImpl) List(ctx context.Context, filter ListFilter) ([]*entity.ExpenseRequest, error) {
	expenses, err := s.expenseRepo.Find(ctx, storeFilter(filter))
	if err != nil {
		s.logger.Error("Failed to query expense requests", "error", err, "filter", int(filter))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if filter == PendingIndividual && len(expenses) == 0 {
		return nil, ErrNoPendingExpenses
	}

	if expenses == nil {
		expenses = []*entity.ExpenseRequest{}
	}
	return expenses, nil
}

func storeFilter(filter ListFilter) port.ExpenseFilter {
	switch filter {
	case PendingIndividual:
		return port.ExpenseFilter{Status: workflow.StatusPending, Group: port.GroupAbsent}
	case PendingGroup:
		return port.ExpenseFilter{Status: workflow.StatusPending, Group: port.GroupPresent}
	default:
		return port.ExpenseFilter{StatusNot: workflow.StatusPending}
	}
}

// Decide applies a terminal status to a pending request and dispatches the
// decision notice exactly once. The persisted status change is retained even
// when the dispatch fails; the failure is reported via NotificationError.
func (s *expenseServiceImpl) Decide(ctx context.Context, id string, status workflow.Status) (*entity.ExpenseRequest, error) {
	if status != workflow.StatusApproved && status != workflow.StatusRejected {
		return nil, &ValidationError{Field: "status", Message: "Invalid status"}
	}

	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		s.logger.Error("Failed to load expense request", "error", err, "expense_id", id)
		return nil, fmt.Errorf("load expense request: %w", err)
	}

	if err := expense.Status.Validate(status); err != nil {
		return nil, err
	}

	// Conditional update: only a pending record can be decided, so a
	// concurrent decision on the same record loses with ErrAlreadyDecided.
	if err := s.expenseRepo.Decide(ctx, id, status); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		if errors.Is(err, workflow.ErrAlreadyDecided) {
			return nil, workflow.ErrAlreadyDecided
		}
		s.logger.Error("Failed to persist decision", "error", err, "expense_id", id)
		return nil, fmt.Errorf("persist decision: %w", err)
	}

	expense.Status = status
	expense.UpdatedAt = time.Now().UTC()

	s.logger.Info("Expense request decided",
		"expense_id", id,
		"status", status.String(),
		"requester", expense.RequesterID,
	)

	if err := s.dispatchDecisionNotice(ctx, expense, status); err != nil {
		return expense, &NotificationError{Err: err}
	}

	return expense, nil
}

// dispatchDecisionNotice performs the single notification attempt and records
// its outcome. Recipient identity comes from the record, captured at creation.
func (s *expenseServiceImpl) dispatchDecisionNotice(ctx context.Context, expense *entity.ExpenseRequest, decision workflow.Status) error {
	recipient := expense.Recipient()

	sendErr := s.mailSender.Send(ctx, recipient, decision)

	notification := &entity.DecisionNotification{
		ExpenseID:      expense.ID,
		RecipientEmail: recipient.Email,
		Decision:       decision.String(),
		Status:         entity.NotificationStatusSent,
		CreatedAt:      time.Now().UTC(),
	}
	if sendErr != nil {
		notification.Status = entity.NotificationStatusFailed
		notification.ErrorMessage = sendErr.Error()
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		// The attempt already happened; losing the outcome row must not turn
		// a delivered notice into a reported failure.
		s.logger.Error("Failed to record notification outcome", "error", err, "expense_id", expense.ID)
	}

	if sendErr != nil {
		s.logger.Error("Failed to send decision notice",
			"error", sendErr,
			"expense_id", expense.ID,
			"recipient", recipient.Email,
		)
		return sendErr
	}

	s.logger.Info("Decision notice sent",
		"expense_id", expense.ID,
		"recipient", recipient.Email,
		"decision", decision.String(),
	)
	return nil
}

// EmployeesWithExpenses returns every employee together with their expense
// requests, for the manager overview.
func (s *expenseServiceImpl) EmployeesWithExpenses(ctx context.Context) ([]*entity.EmployeeExpenses, error) {
	users, err := s.userRepo.ListByRole(ctx, entity.RoleEmployee)
	if err != nil {
		s.logger.Error("Failed to list employees", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result := make([]*entity.EmployeeExpenses, 0, len(users))
	for _, user := range users {
		expenses, err := s.expenseRepo.ListByRequester(ctx, user.ID)
		if err != nil {
			s.logger.Error("Failed to list expenses for employee", "error", err, "user_id", user.ID)
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if expenses == nil {
			expenses = []*entity.ExpenseRequest{}
		}
		result = append(result, &entity.EmployeeExpenses{User: *user, Expenses: expenses})
	}
	return result, nil
}
