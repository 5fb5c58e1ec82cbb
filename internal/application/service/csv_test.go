package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

func TestWriteCSV(t *testing.T) {
	submitted := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	expenses := []*entity.ExpenseRequest{
		{
			ID:            "e1",
			RequesterID:   "u1",
			Description:   "Team lunch, offsite",
			Amount:        123.5,
			Category:      "Meals",
			SubmittedDate: submitted,
			Status:        workflow.StatusApproved,
		},
		{
			ID:            "e2",
			RequesterID:   "u2",
			Description:   "Taxi",
			Amount:        40,
			Category:      "Travel",
			SubmittedDate: submitted,
			Status:        workflow.StatusRejected,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, expenses))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"id", "description", "amount", "category", "status", "submitted_date", "user"}, records[0])
	assert.Equal(t, []string{"e1", "Team lunch, offsite", "123.50", "Meals", "approved", "2026-08-01T12:30:00Z", "u1"}, records[1])
	assert.Equal(t, []string{"e2", "Taxi", "40.00", "Travel", "rejected", "2026-08-01T12:30:00Z", "u2"}, records[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "id,description,amount,category,status,submitted_date,user\n", buf.String())
}
