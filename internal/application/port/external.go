package port

import (
	"context"
	"errors"

	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

// ErrNotFound is returned by repositories when a record does not exist
var ErrNotFound = errors.New("record not found")

// MailSender delivers a decision notice to the requester. One shot: no
// retry, no queueing. A failure is reported as a plain error to the caller.
type MailSender interface {
	Send(ctx context.Context, recipient entity.Recipient, decision workflow.Status) error
}
