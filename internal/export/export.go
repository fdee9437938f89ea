package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"class-panel/internal/lecture"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv" or "xlsx"; an empty value means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds e.g. "log_History-I_2025-03-10.csv".
func FileName(prefix, course string, date time.Time, f Format) string {
	return fmt.Sprintf("%s_%s_%s.%s", prefix, slug(course), date.Format(lecture.DateLayout), f)
}

func slug(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '-'
		}
		return -1
	}, strings.TrimSpace(s))

	if s == "" {
		return "session"
	}
	return s
}

func Write(w io.Writer, f Format, sheet string, t lecture.Table) error {
	switch f {
	case FormatCSV:
		return CSV(w, t)
	case FormatXLSX:
		return XLSX(w, sheet, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// CSV writes a header row followed by one row per table row.
func CSV(w io.Writer, t lecture.Table) error {
	const op = "export.CSV"

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// XLSX writes a single-sheet workbook with the header on the first row.
func XLSX(w io.Writer, sheet string, t lecture.Table) error {
	const op = "export.XLSX"

	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := setRow(f, sheet, 1, t.Header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	return f.SetSheetRow(sheet, cell, &row)
}
