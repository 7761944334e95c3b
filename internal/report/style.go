package report

// Color is an RGB triple in 0-255
type Color struct {
	R, G, B int
}

// Columns is the number of columns of the invoice table
const Columns = 6

// TableHeader is the fixed header row of the invoice table
var TableHeader = [Columns]string{"Realização", "Beneficiário", "Serviço", "Quantidade", "Prestador", "Valor"}

// Style is the immutable visual configuration of an invoice. It is passed and
// stored by value; every Assemble call lays out with its own copy.
type Style struct {
	Orientation string // "L" or "P"
	PageSize    string
	Margin      float64 // points
	FontFamily  string

	TitleFontSize float64
	TitleLeading  float64
	TitleSpacing  float64 // gap between the title block and the table

	ColumnWidths [Columns]float64
	CellPadding  float64

	HeaderFill          Color
	HeaderText          Color
	HeaderFontSize      float64
	HeaderBottomPadding float64

	RowFill        Color
	RowText        Color
	GridColor      Color
	GridWidth      float64
	BodyFontSize   float64
	BodyLineHeight float64

	TotalFontSize float64
	TotalLabel    string

	FooterFontSize float64
	FooterBaseline float64 // distance from the page bottom to the first footer line
	FooterSpacing  float64
}

// DefaultStyle returns the layout of the payroll department invoice:
// landscape A4, grey bold header, light-green gridded rows and a bold total row.
func DefaultStyle() Style {
	return Style{
		Orientation: "L",
		PageSize:    "A4",
		Margin:      72,
		FontFamily:  "Helvetica",

		TitleFontSize: 14,
		TitleLeading:  22,
		TitleSpacing:  12,

		ColumnWidths: [Columns]float64{80, 100, 200, 60, 150, 60},
		CellPadding:  3,

		HeaderFill:          Color{128, 128, 128},
		HeaderText:          Color{245, 245, 245},
		HeaderFontSize:      9,
		HeaderBottomPadding: 12,

		RowFill:        Color{204, 255, 204},
		RowText:        Color{0, 0, 0},
		GridColor:      Color{0, 0, 0},
		GridWidth:      1,
		BodyFontSize:   8,
		BodyLineHeight: 9.5,

		TotalFontSize: 10,
		TotalLabel:    "VALOR TOTAL",

		FooterFontSize: 7,
		FooterBaseline: 40,
		FooterSpacing:  9,
	}
}

// TableWidth is the sum of the column widths
func (s Style) TableWidth() float64 {
	var w float64
	for _, cw := range s.ColumnWidths {
		w += cw
	}
	return w
}

// DefaultFooter is the organization identity block printed on every page
func DefaultFooter() []string {
	return []string{
		"PREFEITURA DE PIRACICABA | SECRETARIA MUNICIPAL DE ADMINISTRAÇÃO E GOVERNO",
		"Departamento de Recursos Humanos",
		"Rua Antônio Corrêa Barbosa, 2233 – 7º Andar – Centro – Piracicaba/SP",
		"Telefone: (19) 3403-1006",
		"Documento gerado eletronicamente pelo DRH",
	}
}
