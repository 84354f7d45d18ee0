// Package csvexport renders admin tables as downloadable CSV files.
//
// Every cell is wrapped in double quotes and embedded quotes are doubled, so
// commas and newlines inside a value stay within one cell.
package csvexport

import (
	"strings"
	"time"
)

const ContentType = "text/csv; charset=utf-8"

// Table is a header row plus records of the same width.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

// Bytes renders the header and one line per row joined by "\n".
func (t *Table) Bytes() []byte {
	var b strings.Builder
	writeLine(&b, t.Header, false)
	for _, row := range t.Rows {
		b.WriteByte('\n')
		writeLine(&b, row, true)
	}
	return []byte(b.String())
}

func writeLine(b *strings.Builder, cells []string, quote bool) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		if quote {
			b.WriteString(Quote(c))
		} else {
			b.WriteString(c)
		}
	}
}

// Quote wraps s in double quotes, doubling any quotes inside it.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FileName builds "<dataset>-<YYYY-MM-DD>.csv" for the UTC date of now.
func FileName(dataset string, now time.Time) string {
	return dataset + "-" + now.UTC().Format("2006-01-02") + ".csv"
}

// Timestamp is the date format used inside exported cells.
func Timestamp(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006, 03:04 PM")
}
