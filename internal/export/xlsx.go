package export

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"dealerscraper/internal/models"
)

const (
	headerFill   = "1F4E78"
	shadedFill   = "F2F2F2"
	headerHeight = 25
	maxColWidth  = 60
	readmeSheet  = "README"
)

var numberFormats = map[Kind]string{
	KindForcedText: "@",
	KindNumber:     "0",
	KindPrice:      "$#,##0",
	KindPayment:    "$#,##0.00",
	KindDistance:   "#,##0",
}

type styleKey struct {
	kind   Kind
	shaded bool
}

// workbook wraps an excelize file with a cache of cell styles
type workbook struct {
	file   *excelize.File
	styles map[styleKey]int
	header int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &workbook{file: f, styles: make(map[styleKey]int), header: header}, nil
}

// cellStyle returns the style for a data cell, or 0 when the default style applies
func (w *workbook) cellStyle(kind Kind, shaded bool) (int, error) {
	format, hasFormat := numberFormats[kind]
	if !hasFormat && !shaded {
		return 0, nil
	}
	key := styleKey{kind: kind, shaded: shaded}
	if id, ok := w.styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if hasFormat {
		style.CustomNumFmt = &format
	}
	if shaded {
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{shadedFill}, Pattern: 1}
	}
	id, err := w.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create cell style: %w", err)
	}
	w.styles[key] = id
	return id, nil
}

// excelValue converts a normalised cell for the workbook. Digit-only strings in
// number columns become numbers so the number format applies.
func excelValue(col Column, cell interface{}) interface{} {
	s, ok := cell.(string)
	if !ok || col.Kind == KindText || col.Kind == KindForcedText {
		return cell
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return cell
}

func (w *workbook) writeSheet(name string, t *Table) error {
	cols := t.Columns
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = utf8.RuneCountInString(c.Name)
	}

	headers := make([]interface{}, len(cols))
	for i, c := range cols {
		headers[i] = c.Name
	}
	if err := w.file.SetSheetRow(name, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}

	for i, row := range t.Rows {
		excelRow := i + 2
		shaded := excelRow >= 3 && excelRow%2 == 1
		values := make([]interface{}, len(row))
		for j, cell := range row {
			values[j] = excelValue(cols[j], cell)
			if n := utf8.RuneCountInString(formatCell(cell)); n > widths[j] {
				widths[j] = n
			}
		}

		start, err := excelize.CoordinatesToCellName(1, excelRow)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(name, start, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, excelRow, err)
		}

		for j, cell := range row {
			kind := cols[j].Kind
			if cell == models.NA && kind != KindForcedText {
				kind = KindText
			}
			style, err := w.cellStyle(kind, shaded)
			if err != nil {
				return err
			}
			if style == 0 {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, excelRow)
			if err != nil {
				return err
			}
			if err := w.file.SetCellStyle(name, ref, ref, style); err != nil {
				return fmt.Errorf("failed to style %s!%s: %w", name, ref, err)
			}
		}
	}

	return w.decorate(name, len(cols), len(t.Rows), widths)
}

// decorate styles the header, sizes columns, freezes the header row and adds a filter
func (w *workbook) decorate(name string, ncols, nrows int, widths []int) error {
	lastCol, err := excelize.ColumnNumberToName(ncols)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(name, "A1", lastCol+"1", w.header); err != nil {
		return fmt.Errorf("failed to style %s header: %w", name, err)
	}
	if err := w.file.SetRowHeight(name, 1, headerHeight); err != nil {
		return err
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(name, col, col, float64(min(width+2, maxColWidth))); err != nil {
			return fmt.Errorf("failed to size %s column %s: %w", name, col, err)
		}
	}

	err = w.file.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", name, err)
	}

	lastRow := max(nrows+1, 2)
	if err := w.file.AutoFilter(name, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil); err != nil {
		return fmt.Errorf("failed to add %s filter: %w", name, err)
	}
	return nil
}

// WriteWorkbook writes every table to its own sheet, followed by a README sheet.
// Tables without rows other than the first get no sheet but stay listed in the
// README with a count of 0.
func WriteWorkbook(path string, tables ...*Table) error {
	w, err := newWorkbook()
	if err != nil {
		return err
	}
	defer w.file.Close()

	readme := &Table{
		Name:    readmeSheet,
		Columns: []Column{{"Sheet", KindText}, {"Rows", KindNumber}, {"Description", KindText}},
	}

	first := true
	for _, t := range tables {
		if !first && len(t.Rows) == 0 {
			readme.Rows = append(readme.Rows, []interface{}{t.Name, 0, sheetDescription(t.Name)})
			continue
		}
		if first {
			if err := w.file.SetSheetName("Sheet1", t.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", t.Name, err)
			}
			first = false
		} else if _, err := w.file.NewSheet(t.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", t.Name, err)
		}
		if err := w.writeSheet(t.Name, t); err != nil {
			return err
		}
		readme.Rows = append(readme.Rows, []interface{}{t.Name, len(t.Rows), sheetDescription(t.Name)})
	}

	if _, err := w.file.NewSheet(readmeSheet); err != nil {
		return fmt.Errorf("failed to add README sheet: %w", err)
	}
	Normalize(readme)
	if err := w.writeSheet(readmeSheet, readme); err != nil {
		return err
	}

	w.file.SetActiveSheet(0)
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func sheetDescription(name string) string {
	switch name {
	case "Vehicles":
		return "One row per vehicle with listing, detail and history summary fields"
	case "Carfax History":
		return "One row per history report timeline event, linked by Vehicle ID"
	default:
		return name
	}
}
