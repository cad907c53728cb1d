package overview

import (
	"bytes"
	"context"
)

// OverviewService builds company-wide rollups.
type OverviewService interface {
	// GetCompanyOverview aggregates the window [today-days, today]
	GetCompanyOverview(ctx context.Context, days int) (*CompanyOverview, error)

	// SearchPersonnel ranks matching employees by 30-day attendance rate
	SearchPersonnel(ctx context.Context, req SearchRequest) ([]PersonnelResult, error)

	// ExportOverview renders the overview as an xlsx workbook and its file name
	ExportOverview(ctx context.Context, days int) (*bytes.Buffer, string, error)
}
