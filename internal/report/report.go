package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/factcheck/internal/model"
)

// Headers are the column names shared by CSV and XLSX reports
var Headers = []string{"id", "claim", "category", "is_false", "status", "verdict", "counter", "citations", "counter_error"}

func row(o *model.Outcome) []string {
	urls := make([]string, 0, len(o.Citations))
	for _, c := range o.Citations {
		urls = append(urls, c.URL)
	}
	return []string{
		o.ID,
		o.Claim,
		o.Category,
		strconv.FormatBool(o.IsFalse),
		string(o.Status),
		o.Verdict,
		o.Counter,
		strings.Join(urls, " "),
		o.CounterError,
	}
}

// WriteJSONL writes one JSON object per outcome
func WriteJSONL(w io.Writer, outcomes []*model.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			return fmt.Errorf("encode outcome %s: %w", o.ID, err)
		}
	}
	return nil
}

// WriteCSV writes a header row and one row per outcome
func WriteCSV(w io.Writer, outcomes []*model.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, o := range outcomes {
		if err := cw.Write(row(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the outcomes to a spreadsheet at path
func WriteXLSX(path string, outcomes []*model.Outcome) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	// Header row
	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	// Data rows
	for r, o := range outcomes {
		for c, v := range row(o) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var value any = v
			if Headers[c] == "is_false" {
				value = o.IsFalse
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteFile writes outcomes to path, picking the format from the extension
// (.jsonl, .csv, .xlsx).
func WriteFile(path string, outcomes []*model.Outcome) error {
	var write func(io.Writer, []*model.Outcome) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, outcomes)
	case ".jsonl", ".json":
		write = WriteJSONL
	case ".csv":
		write = WriteCSV
	default:
		return fmt.Errorf("unsupported report format: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return write(f, outcomes)
}
