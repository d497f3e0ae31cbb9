package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/freelancehub/internal/model"
)

const (
	summarySheet = "Summary"
	bidsSheet    = "Bids"
	maxSheetName = 31
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a summary sheet, a sheet comparing all bids side by side and one
// sheet per bid holding its full proposal.
func (g *Generator) Generate(report model.BidComparison) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", summarySheet)
	g.writeSummary(file, report)

	if _, err := file.NewSheet(bidsSheet); err != nil {
		return nil, err
	}
	if err := g.writeBids(file, report); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}, bidsSheet: {}}
	for _, row := range report.Rows {
		sheetName := buildSheetName(row.FreelancerName, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeProposal(file, sheetName, report, row)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.BidComparison) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	lowest, average := amountStats(report.Rows)

	set("A1", "Project")
	set("B1", report.Project.Title)
	set("A2", "Client")
	set("B2", report.ClientName)
	set("A3", "Status")
	set("B3", string(report.Project.Status))
	set("A4", "Budget")
	set("B4", report.Project.Budget)
	set("A5", "Deadline")
	set("B5", formatDate(report.Project.Deadline))
	set("A6", "Bids received")
	set("B6", len(report.Rows))
	set("A7", "Lowest bid")
	set("B7", lowest)
	set("A8", "Average bid")
	set("B8", average)
	set("A9", "Generated at")
	set("B9", formatDateTime(report.GeneratedAt))

	_ = file.SetColWidth(summarySheet, "A", "A", 20)
	_ = file.SetColWidth(summarySheet, "B", "B", 45)
}

func (g *Generator) writeBids(file *excelize.File, report model.BidComparison) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(bidsSheet, cell, value)
	}

	headers := []string{
		"Freelancer",
		"Amount",
		"Delivery days",
		"Under budget",
		"Status",
		"Submitted at",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, row := range report.Rows {
		line := i + 2
		set(fmt.Sprintf("A%d", line), row.FreelancerName)
		set(fmt.Sprintf("B%d", line), row.Amount)
		set(fmt.Sprintf("C%d", line), row.DeliveryDays)
		set(fmt.Sprintf("D%d", line), yesNo(row.Amount <= report.Project.Budget))
		set(fmt.Sprintf("E%d", line), string(row.Status))
		set(fmt.Sprintf("F%d", line), formatDateTime(row.CreatedAt))
	}

	if err := file.SetPanes(bidsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_ = file.SetColWidth(bidsSheet, "A", "A", 32)
	_ = file.SetColWidth(bidsSheet, "B", "E", 14)
	_ = file.SetColWidth(bidsSheet, "F", "F", 20)
	return nil
}

func (g *Generator) writeProposal(file *excelize.File, sheet string, report model.BidComparison, row model.BidComparisonRow) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Project")
	set("B1", report.Project.Title)
	set("A2", "Freelancer")
	set("B2", row.FreelancerName)
	set("A3", "Amount")
	set("B3", row.Amount)
	set("A4", "Delivery days")
	set("B4", row.DeliveryDays)
	set("A5", "Status")
	set("B5", string(row.Status))
	set("A7", "Proposal")
	set("A8", row.Proposal)

	_ = file.MergeCell(sheet, "A8", "D8")
	if style, err := file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	}); err == nil {
		_ = file.SetCellStyle(sheet, "A8", "A8", style)
	}
	_ = file.SetRowHeight(sheet, 8, 120)
	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "D", 30)
}

func amountStats(rows []model.BidComparisonRow) (float64, float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	lowest := rows[0].Amount
	total := 0.0
	for _, row := range rows {
		if row.Amount < lowest {
			lowest = row.Amount
		}
		total += row.Amount
	}
	return lowest, total / float64(len(rows))
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName("Bid - " + strings.TrimSpace(name))
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	candidate := base
	counter := 2
	for {
		if _, exists := used[candidate]; !exists {
			return candidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
		"'", "",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Bid"
	}
	return value
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
