// Package printing renders SPB, SPPB and BAST documents to HTML and, through
// a headless browser, to PDF.
package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Office is the letterhead printed on every document.
type Office struct {
	Name    string
	Address string
	City    string
}

// Field is a label/value pair printed under the title.
type Field struct {
	Label string
	Value string
}

// Line is one row of the item table.
type Line struct {
	Code      string
	Name      string
	Unit      string
	Requested decimal.Decimal
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Note      string
}

// Subtotal returns quantity times unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Signature is a signing block at the foot of the document.
type Signature struct {
	Caption string // e.g. "Yang Menyerahkan"
	Name    string
	NIP     string
}

// Sheet is everything printed on one document.
type Sheet struct {
	Title         string
	Number        string
	Date          time.Time
	Office        Office
	Fields        []Field
	Lines         []Line
	ShowRequested bool
	ShowPrices    bool
	Note          string
	Signatures    []Signature
}

// Total returns the value of every line.
func (s *Sheet) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Filename suggests a download name derived from the document number.
func (s *Sheet) Filename(ext string) string {
	name := make([]rune, 0, len(s.Number))
	for _, r := range s.Number {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			name = append(name, r)
		default:
			name = append(name, '_')
		}
	}
	if len(name) == 0 {
		return "dokumen." + ext
	}
	return string(name) + "." + ext
}

var sheetTemplate = template.Must(template.New("sheet.html").Funcs(template.FuncMap{
	"qty":       FormatQuantity,
	"rupiah":    FormatRupiah,
	"date":      FormatDate,
	"longDate":  FormatLongDate,
	"title":     Title,
	"terbilang": func(d decimal.Decimal) string { return Terbilang(d.IntPart()) },
	"inc":       func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/sheet.html"))

// RenderHTML renders the sheet as a standalone HTML page.
func RenderHTML(s *Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := sheetTemplate.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("render %s: %w", s.Title, err)
	}
	return buf.Bytes(), nil
}
