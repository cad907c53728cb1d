package overview

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/overview"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

const (
	summarySheet     = "Summary"
	departmentsSheet = "Departments"
	employeesSheet   = "Employees"
	trendsSheet      = "Trends"
)

// ExportOverview implements overview.OverviewService.
func (s *OverviewServiceImpl) ExportOverview(ctx context.Context, days int) (*bytes.Buffer, string, error) {
	data, err := s.GetCompanyOverview(ctx, days)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, "", fmt.Errorf("failed to prepare workbook: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	writers := []func(*excelize.File, int, *overview.CompanyOverview) error{
		writeSummarySheet,
		writeDepartmentsSheet,
		writeEmployeesSheet,
		writeTrendsSheet,
	}
	for _, write := range writers {
		if err := write(f, headerStyle, data); err != nil {
			slog.Error("Failed to write overview workbook", "error", err)
			return nil, "", fmt.Errorf("failed to write overview workbook: %w", err)
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("failed to render overview workbook: %w", err)
	}

	filename := fmt.Sprintf("attendance-overview-%s.xlsx", utils.FormatDate(s.today()))
	return buf, filename, nil
}

// writeTable writes a header row followed by rows starting at A1.
func writeTable(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 20)
}

func writeSummarySheet(f *excelize.File, headerStyle int, data *overview.CompanyOverview) error {
	s := data.Summary
	rows := [][]any{
		{"Total employees", s.TotalEmployees},
		{"Working days", s.TotalWorkingDays},
		{"Overall attendance rate (%)", s.OverallAttendanceRate},
		{"Total present", s.TotalPresent},
		{"Total absent", s.TotalAbsent},
		{"Total leave", s.TotalLeave},
		{"Total half day", s.TotalHalfDay},
		{"Average daily attendance", s.AverageDailyAttendance},
		{"Best department", s.BestDepartment},
		{"Best department rate (%)", s.BestDepartmentRate},
		{"Forecast (%)", s.Forecast},
		{"Confidence", s.Confidence},
		{"Trend", string(s.Trend)},
		{"Peak hour", s.PeakHour},
		{"Peak day", s.PeakDay},
		{"WFH ratio (%)", s.WFHRatio},
		{"Late rate (%)", s.LateRate},
		{"At-risk departments", s.AtRiskCount},
		{"Attendance streak (days)", s.AttendanceStreak},
		{"Busiest day impact (%)", s.BusiestImpact},
	}
	return writeTable(f, summarySheet, headerStyle, []any{"Metric", "Value"}, rows)
}

func writeDepartmentsSheet(f *excelize.File, headerStyle int, data *overview.CompanyOverview) error {
	atRisk := make(map[string]bool, len(data.AtRisk))
	for _, d := range data.AtRisk {
		atRisk[d.Name] = true
	}

	rows := make([][]any, 0, len(data.Departments))
	for _, d := range data.Departments {
		risk := "No"
		if atRisk[d.Name] {
			risk = "Yes"
		}
		rows = append(rows, []any{d.Name, d.EmployeeCount, d.TotalPresent, d.TotalDays, d.AttendanceRate, risk})
	}
	header := []any{"Department", "Employees", "Present", "Possible days", "Attendance rate (%)", "At risk"}
	return writeTable(f, departmentsSheet, headerStyle, header, rows)
}

func writeEmployeesSheet(f *excelize.File, headerStyle int, data *overview.CompanyOverview) error {
	rows := make([][]any, 0, len(data.Employees))
	for _, e := range data.Employees {
		rows = append(rows, []any{e.Name, e.Department, e.PresentDays, e.AbsentDays, e.LeaveDays, e.WFHDays, e.AttendanceRate})
	}
	header := []any{"Name", "Department", "Present", "Absent", "Leave", "WFH", "Attendance rate (%)"}
	return writeTable(f, employeesSheet, headerStyle, header, rows)
}

func writeTrendsSheet(f *excelize.File, headerStyle int, data *overview.CompanyOverview) error {
	rows := make([][]any, 0, len(data.Trends))
	for _, p := range data.Trends {
		rows = append(rows, []any{p.Date, p.PresentCount, p.Rate, p.MovingAvg})
	}
	header := []any{"Date", "Present", "Attendance rate (%)", "7-day moving average"}
	return writeTable(f, trendsSheet, headerStyle, header, rows)
}
