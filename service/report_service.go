// api/service/report_service.go
package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReportRow is one aggregate line of the monthly report.
type ReportRow struct {
	Month    string  `json:"month" db:"month"`
	Category string  `json:"category" db:"category"`
	Total    float64 `json:"total" db:"total"`
}

// IReportService produces the report payloads served under /reports. The
// aggregation math itself is owned by the reporting team; this layer only
// needs a stable interface for the governed report routes.
type IReportService interface {
	MonthlyByCategory(ctx context.Context, userID string) ([]ReportRow, error)
}

type ReportService struct {
	db *sqlx.DB
}

func NewReportService(db *sqlx.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) MonthlyByCategory(ctx context.Context, userID string) ([]ReportRow, error) {
	rows := []ReportRow{}
	const query = `
		SELECT to_char(e.created_at, 'YYYY-MM') AS month,
		       COALESCE(c.name, 'uncategorized') AS category,
		       SUM((e.data->>'amount')::numeric) AS total
		FROM entries e
		LEFT JOIN categories c ON c.id = e.data->>'category_id'
		WHERE e.owner_id = $1
		GROUP BY 1, 2
		ORDER BY 1, 2`
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to build monthly report: %w", err)
	}
	return rows, nil
}
