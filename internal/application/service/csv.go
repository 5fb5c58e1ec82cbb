package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

var csvHeader = []string{"id", "description", "amount", "category", "status", "submitted_date", "user"}

// WriteCSV renders expense requests as CSV for the export download. Columns
// follow the history view; amounts keep two decimals.
func WriteCSV(w io.Writer, expenses []*entity.ExpenseRequest) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range expenses {
		record := []string{
			e.ID,
			e.Description,
			fmt.Sprintf("%.2f", e.Amount),
			e.Category,
			e.Status.String(),
			e.SubmittedDate.UTC().Format(time.RFC3339),
			e.RequesterID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
