package pdftext

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func frag(s string, x, y float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y}
}

func TestAssembleOrdersTopToBottomLeftToRight(t *testing.T) {
	r := NewReader()
	got := r.assemble([]pdf.Text{
		frag("world", 50, 700),
		frag("hello", 10, 700),
		frag("below", 0, 650),
	})
	assert.Equal(t, "  hello   world\nbelow", got)
}

func TestAssembleGroupsNearbyBaselines(t *testing.T) {
	r := NewReader()
	// 1.5pt apart: same visual line despite the jitter.
	got := r.assemble([]pdf.Text{
		frag("Invoice", 10, 700),
		frag("55152414", 60, 701.5),
	})
	assert.Equal(t, "  Invoice   55152414", got)
}

func TestAssemblePadsToColumnPosition(t *testing.T) {
	r := NewReader()
	// X=103 with 5pt cells lands the fragment at column 20.
	got := r.assemble([]pdf.Text{
		frag("1", 0, 700),
		frag("9.55", 103, 700),
	})
	assert.Equal(t, "1"+strings.Repeat(" ", 19)+"9.55", got)
}

func TestAssembleSkipsBlankFragments(t *testing.T) {
	r := NewReader()
	got := r.assemble([]pdf.Text{
		frag("  ", 10, 700),
		frag("only", 0, 690),
	})
	assert.Equal(t, "only", got)
}
