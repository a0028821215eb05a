// Package pdftext turns PDF files into layout-approximate plain text, one
// string per page. The vendor extractors depend only on this text contract,
// not on the PDF library behind it.
package pdftext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor yields per-page plain text for a PDF on disk.
type Extractor interface {
	PageText(path string) ([]string, error)
}

// Reader extracts text with github.com/ledongthuc/pdf, reassembling positioned
// text fragments into lines so label anchors and table rows survive.
type Reader struct {
	// YTolerance groups fragments into the same line when their baselines are
	// within this many points.
	YTolerance float64
	// CharWidth approximates one character cell in points when mapping a
	// fragment's X position to a text column. Column-position heuristics in
	// the extractors (price/total midpoint splits) rely on this mapping.
	CharWidth float64
}

func NewReader() *Reader {
	return &Reader{YTolerance: 2.0, CharWidth: 5.0}
}

func (r *Reader) PageText(path string) ([]string, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, r.assemble(p.Content().Text))
	}
	return pages, nil
}

type line struct {
	y     float64
	frags []pdf.Text
}

// assemble groups fragments into lines by Y, orders them top-to-bottom and
// left-to-right, and pads each fragment out to a column derived from its X
// position so the result reads like fixed-width layout text.
func (r *Reader) assemble(texts []pdf.Text) string {
	var lines []line
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		placed := false
		for i := range lines {
			if abs(lines[i].y-t.Y) < r.YTolerance {
				lines[i].frags = append(lines[i].frags, t)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, line{y: t.Y, frags: []pdf.Text{t}})
		}
	}

	// PDF Y grows upward; reading order is descending Y.
	sort.Slice(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var b strings.Builder
	for li, ln := range lines {
		if li > 0 {
			b.WriteByte('\n')
		}
		sort.Slice(ln.frags, func(i, j int) bool { return ln.frags[i].X < ln.frags[j].X })
		var row strings.Builder
		for _, t := range ln.frags {
			col := int(t.X / r.CharWidth)
			for row.Len() < col {
				row.WriteByte(' ')
			}
			if row.Len() > 0 && row.String()[row.Len()-1] != ' ' {
				row.WriteByte(' ')
			}
			row.WriteString(t.S)
		}
		b.WriteString(strings.TrimRight(row.String(), " "))
	}
	return b.String()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
