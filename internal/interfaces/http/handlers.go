package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/service"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

// Caller-facing messages. Exact strings are part of the API contract.
const (
	msgExpenseNotFound    = "Expense request not found"
	msgNoPendingExpenses  = "No pending expenses found"
	msgAlreadyDecided     = "Expense request already decided"
	msgInternalError      = "Internal server error"
	msgInvalidRequestBody = "Invalid request body"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	expenses service.ExpenseService
	metrics  *Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(expenses service.ExpenseService, metrics *Metrics, logger *zap.Logger) *Handlers {
	return &Handlers{
		expenses: expenses,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateExpenseRequest is the POST /expenses payload
type CreateExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	User        string  `json:"user"`
	Group       *string `json:"group"`
}

// UpdateStatusRequest is the PUT /manager/requests/:id/status payload
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateExpense handles POST /expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid create payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequestBody})
		return
	}

	expense, err := h.expenses.Create(c.Request.Context(), service.CreateInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Status:      req.Status,
		UserID:      req.User,
		GroupID:     req.Group,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// ListPendingIndividual handles GET /manager/requests/users
func (h *Handlers) ListPendingIndividual(c *gin.Context) {
	h.listExpenses(c, service.PendingIndividual)
}

// ListPendingGroup handles GET /manager/requests/group
func (h *Handlers) ListPendingGroup(c *gin.Context) {
	h.listExpenses(c, service.PendingGroup)
}

// ListDecided handles GET /manager/requests/recent
func (h *Handlers) ListDecided(c *gin.Context) {
	h.listExpenses(c, service.Decided)
}

func (h *Handlers) listExpenses(c *gin.Context, filter service.ListFilter) {
	expenses, err := h.expenses.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// ExportDecidedCSV handles GET /manager/requests/recentCsv/:token
func (h *Handlers) ExportDecidedCSV(c *gin.Context) {
	expenses, err := h.expenses.List(c.Request.Context(), service.Decided)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="expenses.csv"`)
	c.Status(http.StatusOK)

	if err := service.WriteCSV(c.Writer, expenses); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.Error("Failed to stream CSV export", zap.Error(err))
	}
}

// UpdateStatus handles PUT /manager/requests/:id/status
func (h *Handlers) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid status payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequestBody})
		return
	}

	id := c.Param("id")
	expense, err := h.expenses.Decide(c.Request.Context(), id, workflow.Status(req.Status))
	if err != nil {
		var notifErr *service.NotificationError
		if errors.As(err, &notifErr) {
			// The decision was persisted; only the notification failed.
			h.metrics.DecisionsTotal.WithLabelValues(req.Status).Inc()
			h.metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		}
		h.respondError(c, err)
		return
	}

	h.metrics.DecisionsTotal.WithLabelValues(req.Status).Inc()
	h.metrics.NotificationsTotal.WithLabelValues("sent").Inc()

	c.JSON(http.StatusOK, expense)
}

// EmployeesWithExpenses handles GET /manager/
func (h *Handlers) EmployeesWithExpenses(c *gin.Context) {
	employees, err := h.expenses.EmployeesWithExpenses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// respondError maps engine errors onto the API's error bodies. Validation
// and not-found conditions carry their own messages; store failures on list
// reads stay generic, while create/decide surface the underlying error.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrExpenseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgExpenseNotFound})
	case errors.Is(err, service.ErrNoPendingExpenses):
		c.JSON(http.StatusNotFound, gin.H{"message": msgNoPendingExpenses})
	case errors.Is(err, workflow.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"message": msgAlreadyDecided})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternalError})
	default:
		var notifErr *service.NotificationError
		if errors.As(err, &notifErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": notifErr.Err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
