// Package report lays out a filtered statement as a PDF invoice.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/invoice"
)

var (
	// ErrNoData is returned for an empty statement, before any layout work
	ErrNoData = errors.New("nenhum dado para gerar a fatura")
	// ErrLayout wraps failures reported by the PDF engine
	ErrLayout = errors.New("falha ao gerar o PDF")
)

// Assembler renders statements with a fixed style and footer.
// It holds no per-document state and is safe for concurrent use.
type Assembler struct {
	style  Style
	footer []string
	logger *zap.Logger
}

// NewAssembler creates an assembler; a nil footer uses DefaultFooter
func NewAssembler(style Style, footer []string, logger *zap.Logger) *Assembler {
	if footer == nil {
		footer = DefaultFooter()
	}
	lines := make([]string, len(footer))
	copy(lines, footer)
	return &Assembler{style: style, footer: lines, logger: logger}
}

// Style returns the style used by the assembler
func (a *Assembler) Style() Style {
	return a.style
}

// Assemble renders the statement and returns the document positioned at offset 0
func (a *Assembler) Assemble(st *entity.Statement) (*bytes.Reader, error) {
	if st.IsEmpty() {
		return nil, ErrNoData
	}

	l := newLayout(a.style, a.footer)
	l.pdf.SetTitle("Fatura "+st.FunctionalID, true)
	l.pdf.SetAuthor("Departamento de Recursos Humanos", true)
	l.pdf.SetCreator("fatura-coparticipacao", true)

	l.pdf.AddPage()
	l.title(st)
	l.tableHeader()
	for _, line := range st.Lines {
		l.row([Columns]string{
			line.RealizationDate,
			line.Beneficiary,
			line.Service,
			line.Quantity,
			line.Provider,
			invoice.FormatCurrency(line.Amount),
		}, rowBody)
	}
	l.row([Columns]string{"", "", "", "", a.style.TotalLabel, invoice.FormatCurrency(st.Total)}, rowTotal)

	if l.pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrLayout, l.pdf.Error())
	}

	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayout, err)
	}

	if len(l.unsupported) > 0 {
		a.logger.Warn("Characters outside the PDF font encoding were replaced",
			zap.String("functional_id", st.FunctionalID),
			zap.String("characters", runeList(l.unsupported)))
	}

	a.logger.Debug("Invoice assembled",
		zap.String("functional_id", st.FunctionalID),
		zap.Int("lines", len(st.Lines)),
		zap.Int("pages", l.pdf.PageCount()),
		zap.Int("bytes", buf.Len()))

	return bytes.NewReader(buf.Bytes()), nil
}

type rowKind int

const (
	rowHeader rowKind = iota
	rowBody
	rowTotal
)

// layout is the per-document state of one Assemble call
type layout struct {
	pdf          *gofpdf.Fpdf
	tr           func(string) string
	style        Style
	left         float64
	bottom       float64
	headerHeight float64
	// fresh is set on a new page until its first body row is drawn
	fresh bool
	// unsupported collects runes the core fonts cannot show; they print as "."
	unsupported map[rune]bool
}

func newLayout(style Style, footer []string) *layout {
	pdf := gofpdf.New(style.Orientation, "pt", style.PageSize, "")
	pdf.SetMargins(style.Margin, style.Margin, style.Margin)
	pdf.SetAutoPageBreak(false, style.Margin)

	pageW, pageH := pdf.GetPageSize()
	l := &layout{
		pdf:         pdf,
		style:       style,
		left:        (pageW - style.TableWidth()) / 2,
		bottom:      pageH - style.Margin,
		unsupported: make(map[rune]bool),
	}
	if l.left < 0 {
		l.left = 0
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	l.tr = func(text string) string {
		for _, r := range UnsupportedRunes(text) {
			l.unsupported[r] = true
		}
		return tr(text)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetFont(style.FontFamily, "", style.FooterFontSize)
		pdf.SetTextColor(0, 0, 0)
		for i, text := range footer {
			y := pageH - style.FooterBaseline + float64(i)*style.FooterSpacing - style.FooterFontSize
			pdf.SetXY(0, y)
			pdf.CellFormat(pageW, style.FooterFontSize, l.tr(text), "", 0, "C", false, 0, "")
		}
	})
	return l
}

func (l *layout) title(st *entity.Statement) {
	s := l.style
	l.pdf.SetFont(s.FontFamily, "B", s.TitleFontSize)
	l.pdf.SetTextColor(0, 0, 0)
	for _, text := range []string{
		"Funcional: " + st.FunctionalID,
		"Titular: " + st.Holder,
		"Mês Referência: " + st.MonthName,
	} {
		l.pdf.CellFormat(0, s.TitleLeading, l.tr(text), "", 1, "C", false, 0, "")
	}
	l.pdf.Ln(s.TitleSpacing)
}

func (l *layout) tableHeader() {
	l.row(TableHeader, rowHeader)
}

func (l *layout) font(kind rowKind) (style string, size float64) {
	switch kind {
	case rowHeader:
		return "B", l.style.HeaderFontSize
	case rowTotal:
		return "B", l.style.TotalFontSize
	default:
		return "", l.style.BodyFontSize
	}
}

// row draws one table row, wrapping long cells. A row that does not fit moves
// to a new page, where the header row is repeated; a row taller than a whole page
// is split across pages.
func (l *layout) row(cells [Columns]string, kind rowKind) {
	s := l.style
	fontStyle, fontSize := l.font(kind)
	l.pdf.SetFont(s.FontFamily, fontStyle, fontSize)

	lineH := s.BodyLineHeight
	if fontSize > lineH {
		lineH = fontSize + 1.5
	}

	var wrapped [Columns][][]byte
	for i, text := range cells {
		wrapped[i] = l.pdf.SplitLines([]byte(l.tr(text)), s.ColumnWidths[i]-2*s.CellPadding)
	}

	for {
		y := l.pdf.GetY()
		height := l.rowHeight(wrapped, lineH, kind)
		if y+height <= l.bottom {
			l.draw(wrapped, height, lineH, kind, y)
			break
		}

		if kind == rowHeader || height <= l.bottom-s.Margin-l.headerHeight {
			if l.fresh {
				l.draw(wrapped, height, lineH, kind, y)
				break
			}
			l.breakPage(kind, fontStyle, fontSize)
			continue
		}

		n := int((l.bottom - y - 2*s.CellPadding) / lineH)
		if n < 1 {
			if l.fresh {
				l.draw(wrapped, height, lineH, kind, y)
				break
			}
			l.breakPage(kind, fontStyle, fontSize)
			continue
		}
		var part [Columns][][]byte
		for i := range wrapped {
			k := n
			if k > len(wrapped[i]) {
				k = len(wrapped[i])
			}
			part[i], wrapped[i] = wrapped[i][:k], wrapped[i][k:]
		}
		l.draw(part, float64(n)*lineH+2*s.CellPadding, lineH, kind, y)
		l.breakPage(kind, fontStyle, fontSize)
	}

	if kind != rowHeader {
		l.fresh = false
	}
}

func (l *layout) rowHeight(wrapped [Columns][][]byte, lineH float64, kind rowKind) float64 {
	maxLines := 1
	for _, lines := range wrapped {
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	height := float64(maxLines)*lineH + 2*l.style.CellPadding
	if kind == rowHeader {
		height += l.style.HeaderBottomPadding
	}
	return height
}

// breakPage starts a new page, repeating the header row before body rows
func (l *layout) breakPage(kind rowKind, fontStyle string, fontSize float64) {
	l.pdf.AddPage()
	l.fresh = true
	if kind != rowHeader {
		l.tableHeader()
		l.pdf.SetFont(l.style.FontFamily, fontStyle, fontSize)
	}
}

func (l *layout) draw(wrapped [Columns][][]byte, height, lineH float64, kind rowKind, y float64) {
	s := l.style
	fill, text := s.RowFill, s.RowText
	border := "FD"
	switch kind {
	case rowHeader:
		fill, text = s.HeaderFill, s.HeaderText
		l.headerHeight = height
	case rowTotal:
		border = "F"
	}
	l.pdf.SetFillColor(fill.R, fill.G, fill.B)
	l.pdf.SetTextColor(text.R, text.G, text.B)
	l.pdf.SetDrawColor(s.GridColor.R, s.GridColor.G, s.GridColor.B)
	l.pdf.SetLineWidth(s.GridWidth)

	x := l.left
	for i, lines := range wrapped {
		w := s.ColumnWidths[i]
		l.pdf.Rect(x, y, w, height, border)

		top := y + s.CellPadding + (height-2*s.CellPadding-float64(len(lines))*lineH)/2
		if kind == rowHeader {
			top = y + s.CellPadding + (height-s.HeaderBottomPadding-2*s.CellPadding-float64(len(lines))*lineH)/2
		}
		for j, line := range lines {
			l.pdf.SetXY(x+s.CellPadding, top+float64(j)*lineH)
			l.pdf.CellFormat(w-2*s.CellPadding, lineH, string(line), "", 0, "C", false, 0, "")
		}
		x += w
	}
	l.pdf.SetXY(s.Margin, y+height)
}

// UnsupportedRunes returns, in order of appearance, the distinct runes of text that
// the core PDF fonts (cp1252) cannot encode
func UnsupportedRunes(text string) []rune {
	var out []rune
	seen := make(map[rune]bool)
	for _, r := range text {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func runeList(set map[rune]bool) string {
	runes := make([]rune, 0, len(set))
	for r := range set {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}
