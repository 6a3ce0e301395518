package convert

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
)

// convertCSV renders a CSV file as a markdown table. The first record
// becomes the header row.
func convertCSV(_ context.Context, data []byte, _ string) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	var buf bytes.Buffer
	writeRow(&buf, records[0], width)

	buf.WriteString("|")
	for i := 0; i < width; i++ {
		buf.WriteString(" --- |")
	}
	buf.WriteString("\n")

	for _, rec := range records[1:] {
		writeRow(&buf, rec, width)
	}

	return buf.String(), nil
}

func writeRow(buf *bytes.Buffer, rec []string, width int) {
	buf.WriteString("|")
	for i := 0; i < width; i++ {
		val := ""
		if i < len(rec) {
			val = escapeCell(rec[i])
		}
		buf.WriteString(" " + val + " |")
	}
	buf.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
