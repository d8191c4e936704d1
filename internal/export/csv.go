package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
)

// utf8BOM lets spreadsheet applications detect the encoding
const utf8BOM = "\ufeff"

// WriteCSV writes a table as UTF-8 CSV with a byte order mark
func WriteCSV(path string, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	if _, err := buf.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	w := csv.NewWriter(buf)
	if err := w.Write(t.Headers()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
