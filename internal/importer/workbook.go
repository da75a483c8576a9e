package importer

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Cell is one spreadsheet value. Numeric cells keep their number so follower
// counts, prices and serial dates are not re-parsed from formatted text.
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
}

// Text builds a text cell.
func Text(s string) Cell { return Cell{Text: s} }

// Num builds a numeric cell.
func Num(f float64) Cell {
	return Cell{Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f, IsNumber: true}
}

// String returns the trimmed textual form of the cell.
func (c Cell) String() string {
	return strings.TrimSpace(c.Text)
}

// Blank reports whether the cell holds nothing meaningful. A numeric zero
// counts as blank, matching how the legacy sheets were read.
func (c Cell) Blank() bool {
	if c.IsNumber {
		return c.Number == 0
	}
	return c.String() == ""
}

// Row is one spreadsheet row. Indexing past the end yields an empty cell.
type Row []Cell

// At returns the cell at column i, or an empty cell when i is out of range.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Blank reports whether every cell in the row is blank.
func (r Row) Blank() bool {
	for _, c := range r {
		if !c.Blank() {
			return false
		}
	}
	return true
}

// Workbook gives read access to named tabs.
type Workbook interface {
	SheetNames() []string
	Sheet(name string) ([]Row, bool)
}

// MemoryWorkbook is an in-memory Workbook. Sheet order is preserved.
type MemoryWorkbook struct {
	names  []string
	sheets map[string][]Row
}

// NewMemoryWorkbook returns an empty workbook.
func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{sheets: make(map[string][]Row)}
}

// AddSheet appends (or replaces) a tab.
func (w *MemoryWorkbook) AddSheet(name string, rows []Row) {
	if _, ok := w.sheets[name]; !ok {
		w.names = append(w.names, name)
	}
	w.sheets[name] = rows
}

func (w *MemoryWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

func (w *MemoryWorkbook) Sheet(name string) ([]Row, bool) {
	rows, ok := w.sheets[name]
	return rows, ok
}

// OpenWorkbook reads every tab of an .xlsx file into memory.
func OpenWorkbook(path string) (*MemoryWorkbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", path)
	}

	wb := NewMemoryWorkbook()
	for _, sheet := range f.Sheets {
		rows := make([]Row, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			rows = append(rows, convertRow(row))
		}
		wb.AddSheet(sheet.Name, rows)
	}
	return wb, nil
}

func convertRow(row *xlsx.Row) Row {
	if row == nil {
		return nil
	}
	cells := make(Row, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = convertCell(cell)
	}
	return cells
}

func convertCell(cell *xlsx.Cell) Cell {
	if cell == nil {
		return Cell{}
	}
	out := Cell{Text: cell.Value}
	switch cell.Type() {
	case xlsx.CellTypeNumeric:
		if strings.TrimSpace(cell.Value) == "" {
			return out
		}
		if f, err := cell.Float(); err == nil {
			out.Number = f
			out.IsNumber = true
		}
	}
	return out
}
