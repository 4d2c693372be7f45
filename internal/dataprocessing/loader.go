package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"participation/internal/errors"
	"participation/pkg/contracts/domain"
)

// NullMarkers are cell values read as missing
var NullMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<NA>"}

// Loader reads attendance tables from CSV or Excel files
type Loader struct {
	logger *slog.Logger
	sheet  string
}

// NewLoader creates a loader. sheet selects the worksheet of Excel inputs;
// empty means the first sheet.
func NewLoader(logger *slog.Logger, sheet string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, sheet: sheet}
}

// Load reads path into a string-typed frame. Column names are kept as given.
func (l *Loader) Load(ctx context.Context, path string) (*Frame, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("input file", err).WithContext("path", path)
		}
		return nil, errors.NewStorageError("cannot access input file", err).WithContext("path", path)
	}

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = l.readExcel(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	frame, err := NewFrame(records)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}

	l.logger.InfoContext(ctx, "input loaded",
		slog.String("path", path),
		slog.Int("rows", frame.Nrow()),
		slog.Int("columns", len(frame.Names())))

	return frame, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open input file", err).WithContext("path", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("malformed CSV", err).WithContext("path", path)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	l.logger.Debug("worksheet read", slog.String("sheet", sheet), slog.Int("rows", len(rows)))
	return rows, nil
}

// Frame is a loaded table. Every column is a string series; missing cells
// are NA.
type Frame struct {
	df    dataframe.DataFrame
	names []string
}

// NewFrame builds a frame from raw records whose first row is the header.
// Short rows are padded with missing values; rows longer than the header
// are rejected.
func NewFrame(records [][]string) (*Frame, error) {
	if len(records) == 0 {
		return nil, errors.NewParsingError("input file is empty", nil)
	}

	header := records[0]
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, errors.NewParsingError("input has no columns", nil)
	}
	names := make([]string, len(header))
	copy(names, header)

	rows := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) > len(names) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("expected %d fields, saw %d", len(names), len(rec)), nil).
				WithContext("row", i+1)
		}
		row := make([]string, len(names))
		copy(row, rec)
		rows = append(rows, row)
	}

	// gota rejects a frame with no data rows, so build empty series directly
	if len(rows) == 0 {
		cols := make([]series.Series, len(names))
		for i, name := range names {
			cols[i] = series.New([]string{}, series.String, name)
		}
		return &Frame{df: dataframe.New(cols...), names: names}, nil
	}

	df := dataframe.LoadRecords(
		append([][]string{names}, rows...),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NullMarkers),
	)
	if df.Err != nil {
		return nil, errors.NewParsingError("failed to build table", df.Err)
	}

	return &Frame{df: df, names: names}, nil
}

// Names returns the column names in file order
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Nrow returns the number of data rows
func (f *Frame) Nrow() int {
	return f.df.Nrow()
}

// HasColumn reports whether name is a column of the frame
func (f *Frame) HasColumn(name string) bool {
	return f.index(name) >= 0
}

func (f *Frame) index(name string) int {
	for i, n := range f.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns the named column. A missing column is a validation error.
func (f *Frame) Column(name string) (Column, error) {
	idx := f.index(name)
	if idx < 0 {
		return Column{}, errors.NewMissingColumnError(name)
	}

	// gota renames duplicate headers, so address the series by position
	ser := f.df.Col(f.df.Names()[idx])
	if ser.Err != nil {
		return Column{}, errors.NewParsingError("failed to read column", ser.Err).WithContext("column", name)
	}

	n := ser.Len()
	col := Column{
		Name:   name,
		Values: make([]string, n),
		Null:   make([]bool, n),
	}
	for i := 0; i < n; i++ {
		e := ser.Elem(i)
		if e.IsNA() {
			col.Null[i] = true
			continue
		}
		col.Values[i] = e.String()
	}
	return col, nil
}

// Head returns up to n data rows. Missing cells render as NaN.
func (f *Frame) Head(n int) [][]string {
	if n > f.Nrow() {
		n = f.Nrow()
	}
	if n <= 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	records := f.df.Subset(idx).Records()
	if len(records) < 2 {
		return nil
	}
	return records[1:]
}

// Info summarises the frame schema: non-null count and type per column
func (f *Frame) Info() domain.FrameInfo {
	info := domain.FrameInfo{Rows: f.Nrow(), Columns: make([]domain.ColumnInfo, 0, len(f.names))}
	for _, name := range f.names {
		col, err := f.Column(name)
		if err != nil {
			continue
		}
		info.Columns = append(info.Columns, domain.ColumnInfo{
			Name:     name,
			NonNull:  col.NonNull(),
			DataType: string(series.String),
		})
	}
	return info
}

// Column is one frame column materialised as strings
type Column struct {
	Name   string
	Values []string
	Null   []bool
}

// Len returns the number of cells
func (c Column) Len() int {
	return len(c.Values)
}

// NonNull counts the non-missing cells
func (c Column) NonNull() int {
	n := 0
	for _, null := range c.Null {
		if !null {
			n++
		}
	}
	return n
}

// IsNull reports whether cell i is missing
func (c Column) IsNull(i int) bool {
	return c.Null[i]
}
