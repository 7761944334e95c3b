package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrNotPDF is returned when the bytes do not start with a PDF signature
var ErrNotPDF = errors.New("documento não é um PDF")

// Inspection is the text content of a rendered document
type Inspection struct {
	Pages    int               `json:"pages"`
	Text     []string          `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Inspect opens a PDF from memory and extracts the text of every page
func Inspect(data []byte) (*Inspection, error) {
	if !strings.HasPrefix(string(data[:min(len(data), 5)]), "%PDF-") {
		return nil, ErrNotPDF
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	ins := &Inspection{
		Pages:    doc.NumPage(),
		Text:     make([]string, 0, doc.NumPage()),
		Metadata: doc.Metadata(),
	}
	for i := 0; i < ins.Pages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text of page %d: %w", i+1, err)
		}
		ins.Text = append(ins.Text, text)
	}
	return ins, nil
}

// InspectFile reads and inspects a PDF on disk
func InspectFile(path string) (*Inspection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Inspect(data)
}

// Contains reports whether every needle appears in the text of some page
func (i *Inspection) Contains(needles ...string) bool {
	all := strings.Join(i.Text, "\n")
	for _, n := range needles {
		if !strings.Contains(all, n) {
			return false
		}
	}
	return true
}
