// Package importer bulk-loads cards into a lesson from a spreadsheet.
//
// Rows are read as english_text, translation and an optional order column.
// Both .xlsx workbooks and .csv files are accepted.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
	"github.com/xuri/excelize/v2"
)

const (
	colEnglish = iota
	colTranslation
	colOrder
)

type cardCreator interface {
	CreateCard(ctx context.Context, r service.CreateCardRequest) (model.Card, error)
}

type Options struct {
	LessonID int64
	// Sheet selects the workbook sheet. Empty means the first one. Ignored for CSV.
	Sheet      string
	SkipHeader bool
}

type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

type Result struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []RowError
}

type Importer struct {
	cards cardCreator
}

func New(cards cardCreator) *Importer {
	return &Importer{cards: cards}
}

// ImportFile creates a card for every non-empty row of the file at path.
// Rows the service rejects are collected in Result.Errors; a missing lesson aborts the import.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (Result, error) {
	rows, err := readRows(path, opts.Sheet)
	if err != nil {
		return Result{}, err
	}

	return im.Import(ctx, rows, opts)
}

func (im *Importer) Import(ctx context.Context, rows [][]string, opts Options) (Result, error) {
	var res Result

	for i, row := range rows {
		line := i + 1
		if i == 0 && opts.SkipHeader {
			continue
		}

		if blank(row) {
			res.Skipped++
			continue
		}
		res.Processed++

		req, err := cardFromRow(opts.LessonID, row)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: line, Err: err})
			continue
		}

		_, err = im.cards.CreateCard(ctx, req)
		if err != nil {
			var se *serr.ServiceError
			if !errors.As(err, &se) || se.StatusCode == http.StatusNotFound {
				return res, fmt.Errorf("import row %d: %w", line, err)
			}

			res.Errors = append(res.Errors, RowError{Row: line, Err: err})
			continue
		}
		res.Created++
	}

	return res, nil
}

func cardFromRow(lessonID int64, row []string) (service.CreateCardRequest, error) {
	req := service.CreateCardRequest{
		LessonID:    lessonID,
		EnglishText: cell(row, colEnglish),
		Translation: cell(row, colTranslation),
	}

	if raw := cell(row, colOrder); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid order %q", raw)
		}
		req.Order = &order
	}

	return req, nil
}

func readRows(path, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readWorkbook(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
