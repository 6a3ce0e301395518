package convert

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// convertXLSX renders each sheet of a workbook as a markdown table
// under a sheet heading. The first row of a sheet is treated as the
// header row.
func convertXLSX(_ context.Context, data []byte, _ string) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&buf, "## %s\n\n", sheet)

		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}

		writeSheetRow(&buf, rows[0], width)
		buf.WriteString("|")
		for i := 0; i < width; i++ {
			buf.WriteString(" --- |")
		}
		buf.WriteString("\n")

		for _, row := range rows[1:] {
			writeSheetRow(&buf, row, width)
		}
		buf.WriteString("\n")
	}

	return buf.String(), nil
}

func writeSheetRow(buf *strings.Builder, row []string, width int) {
	buf.WriteString("|")
	for i := 0; i < width; i++ {
		val := ""
		if i < len(row) {
			val = escapeCell(row[i])
		}
		buf.WriteString(" " + val + " |")
	}
	buf.WriteString("\n")
}
