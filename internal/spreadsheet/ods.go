package spreadsheet

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Repeat attributes on trailing empty cells/rows routinely span the whole sheet
// (1024 columns, 1048576 rows); expansion is capped.
const (
	odsMaxRepeat = 1000
)

type odsContent struct {
	Tables []odsTable `xml:"body>spreadsheet>table"`
}

type odsTable struct {
	Name       string   `xml:"name,attr"`
	HeaderRows []odsRow `xml:"table-header-rows>table-row"`
	Rows       []odsRow `xml:"table-row"`
	GroupRows  []odsRow `xml:"table-row-group>table-row"`
}

type odsRow struct {
	Repeat int       `xml:"number-rows-repeated,attr"`
	Cells  []odsCell `xml:"table-cell"`
}

type odsCell struct {
	Repeat     int            `xml:"number-columns-repeated,attr"`
	ValueType  string         `xml:"value-type,attr"`
	Value      string         `xml:"value,attr"`
	DateValue  string         `xml:"date-value,attr"`
	Paragraphs []odsParagraph `xml:"p"`
}

// odsParagraph is the text of a text:p element with inline markup flattened in
// document order
type odsParagraph string

func (p *odsParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	if err := odsText(d, &b); err != nil {
		return err
	}
	*p = odsParagraph(b.String())
	return nil
}

// odsText appends the character data up to the end tag of the current element.
// text:s, text:tab and text:line-break expand to their characters; notes are skipped.
func odsText(d *xml.Decoder, b *strings.Builder) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return nil
		case xml.StartElement:
			switch t.Name.Local {
			case "s":
				b.WriteString(strings.Repeat(" ", odsSpaceCount(t)))
				err = d.Skip()
			case "tab":
				b.WriteByte('\t')
				err = d.Skip()
			case "line-break":
				b.WriteByte('\n')
				err = d.Skip()
			case "note", "annotation":
				err = d.Skip()
			default:
				err = odsText(d, b)
			}
			if err != nil {
				return err
			}
		}
	}
}

func odsSpaceCount(start xml.StartElement) int {
	for _, attr := range start.Attr {
		if attr.Name.Local != "c" {
			continue
		}
		n, err := strconv.Atoi(attr.Value)
		if err != nil || n < 1 {
			return 1
		}
		if n > odsMaxRepeat {
			return odsMaxRepeat
		}
		return n
	}
	return 1
}

func (c odsCell) text() string {
	switch c.ValueType {
	case "float", "percentage", "currency":
		if c.Value != "" {
			return c.Value
		}
	case "date":
		if text, ok := formatISODate(c.DateValue); ok {
			return text
		}
		if c.DateValue != "" {
			return c.DateValue
		}
	}

	lines := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		lines[i] = string(p)
	}
	return strings.Join(lines, "\n")
}

func (r odsRow) record() []string {
	var record []string
	for _, cell := range r.Cells {
		value := cell.text()
		n := cell.Repeat
		if n < 1 {
			n = 1
		}
		if n > odsMaxRepeat {
			n = odsMaxRepeat
		}
		for i := 0; i < n; i++ {
			record = append(record, value)
		}
	}
	for len(record) > 0 && record[len(record)-1] == "" {
		record = record[:len(record)-1]
	}
	return record
}

func (t odsTable) records() [][]string {
	var records [][]string
	all := append(append(append([]odsRow{}, t.HeaderRows...), t.Rows...), t.GroupRows...)
	for _, row := range all {
		record := row.record()
		n := row.Repeat
		if n < 1 {
			n = 1
		}
		if len(record) == 0 {
			// blank rows are dropped by NewTable; one copy keeps line numbers close enough
			n = 1
		} else if n > odsMaxRepeat {
			n = odsMaxRepeat
		}
		for i := 0; i < n; i++ {
			records = append(records, record)
		}
	}
	return records
}

func readODS(path string, sel SheetSelector) (*Table, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ods: %w", err)
	}
	defer archive.Close()

	var content *zip.File
	for _, f := range archive.File {
		if f.Name == "content.xml" {
			content = f
			break
		}
	}
	if content == nil {
		return nil, fmt.Errorf("failed to open ods: content.xml not found")
	}

	rc, err := content.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open ods content: %w", err)
	}
	defer rc.Close()

	doc, err := decodeODS(rc)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(doc.Tables))
	for i, t := range doc.Tables {
		names[i] = t.Name
	}

	idx, err := sel.pick(names)
	if err != nil {
		return nil, err
	}

	return NewTable(path, names[idx], doc.Tables[idx].records())
}

func decodeODS(r io.Reader) (*odsContent, error) {
	var doc odsContent
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse ods content: %w", err)
	}
	return &doc, nil
}
