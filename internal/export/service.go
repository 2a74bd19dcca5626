package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/pipeline"
	"github.com/joseph-ayodele/contracts-checker/internal/rules"
)

const (
	IssuesSheet  = "Issues"
	SummarySheet = "Summary"
)

// DocumentResult is one processed document as seen by the exporter.
type DocumentResult struct {
	Source string
	Report pipeline.Report
	Err    error
}

// Service renders batch results into an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var (
	issueHeaders   = []string{"Document", "Form Version", "Issue ID", "Severity", "Message", "Cite"}
	summaryHeaders = []string{"Document", "Request ID", "Mode", "Form Version", "Issues", "Highest Severity", "Provisions Risk", "Error"}
)

// ExportIssuesXLSX returns a workbook (as bytes) with one row per issue,
// sorted most severe first within each document, and a per-document summary.
func (s *Service) ExportIssuesXLSX(docs []DocumentResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", IssuesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, err
	}
	if err := writeHeader(f, IssuesSheet, issueHeaders); err != nil {
		return nil, err
	}
	if err := writeHeader(f, SummarySheet, summaryHeaders); err != nil {
		return nil, err
	}

	issueRow, summaryRow, total := 2, 2, 0
	for _, d := range docs {
		rep := d.Report
		highest := ""
		sorted := rules.SortBySeverity(rep.Issues)
		for _, is := range sorted {
			if err := writeRow(f, IssuesSheet, issueRow,
				d.Source, rep.Record.FormVersion, is.ID, string(is.Severity), is.Message, is.Cite); err != nil {
				return nil, err
			}
			issueRow++
		}
		if len(sorted) > 0 {
			highest = string(sorted[0].Severity)
		}
		total += len(sorted)

		risk := ""
		if rep.Provisions != nil {
			risk = string(rep.Provisions.Level)
		}
		errText := ""
		if d.Err != nil {
			errText = d.Err.Error()
		}
		if err := writeRow(f, SummarySheet, summaryRow,
			d.Source, rep.RequestID, string(rep.Meta.Mode), rep.Record.FormVersion, len(sorted), highest, risk, truncate(errText, 300)); err != nil {
			return nil, err
		}
		summaryRow++
	}

	_ = f.SetColWidth(IssuesSheet, "A", "A", 40) // document
	_ = f.SetColWidth(IssuesSheet, "B", "D", 18)
	_ = f.SetColWidth(IssuesSheet, "E", "E", 80) // message
	_ = f.SetColWidth(IssuesSheet, "F", "F", 36)
	_ = f.SetColWidth(SummarySheet, "A", "A", 40)
	_ = f.SetColWidth(SummarySheet, "B", "B", 38)
	_ = f.SetColWidth(SummarySheet, "H", "H", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"issues", total,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// HighestSeverity returns the most severe level among the documents' issues,
// or "" when none were raised.
func HighestSeverity(docs []DocumentResult) constants.Severity {
	var top constants.Severity
	for _, d := range docs {
		for _, is := range d.Report.Issues {
			if is.Severity.MoreSevere(top) {
				top = is.Severity
			}
		}
	}
	return top
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if s, ok := v.(string); ok {
			err = f.SetCellStr(sheet, cell, s)
		} else {
			err = f.SetCellValue(sheet, cell, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
