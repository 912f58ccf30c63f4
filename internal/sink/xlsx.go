package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Workbook appends one dated row per invocation to a local spreadsheet,
// keeping a running export of results. Columns follow catalog order so rows
// from different invocations line up.
type Workbook struct {
	path  string
	sheet string
	tests []string
	log   *zap.Logger
	now   func() time.Time
}

func NewWorkbook(path, sheet string, tests []string, log *zap.Logger) *Workbook {
	return &Workbook{path: path, sheet: sheet, tests: tests, log: log, now: time.Now}
}

func (w *Workbook) Name() string { return "xlsx" }

func (w *Workbook) Submit(ctx context.Context, result map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fields, err := buildFields(result, w.now())
	if err != nil {
		return err
	}

	f, created, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", w.sheet, err)
	}

	if len(rows) == 0 {
		if err := w.writeRow(f, 1, w.headerRow()); err != nil {
			return err
		}
		rows = [][]string{nil}
	}

	row := make([]any, 0, len(w.tests)+1)
	row = append(row, fields["date"])
	for _, test := range w.tests {
		if v, ok := fields[test]; ok {
			row = append(row, v)
		} else {
			row = append(row, nil)
		}
	}
	if err := w.writeRow(f, len(rows)+1, row); err != nil {
		return err
	}

	if created {
		err = f.SaveAs(w.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}

	w.log.Info("row appended",
		zap.String("path", w.path),
		zap.Int("row", len(rows)+1))
	return nil
}

func (w *Workbook) open() (f *excelize.File, created bool, err error) {
	f, err = excelize.OpenFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		f = excelize.NewFile()
		if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
			return nil, false, fmt.Errorf("name sheet: %w", err)
		}
		return f, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open workbook %s: %w", w.path, err)
	}

	idx, err := f.GetSheetIndex(w.sheet)
	if err != nil {
		return nil, false, fmt.Errorf("sheet lookup: %w", err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(w.sheet); err != nil {
			return nil, false, fmt.Errorf("create sheet: %w", err)
		}
	}
	return f, false, nil
}

func (w *Workbook) headerRow() []any {
	header := make([]any, 0, len(w.tests)+1)
	header = append(header, "date")
	for _, test := range w.tests {
		header = append(header, test)
	}
	return header
}

func (w *Workbook) writeRow(f *excelize.File, row int, values []any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(w.sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
