// Package pdf is the Document Exporter: a title and lines of text in, an A4
// PDF out.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

// headingMaxRunes bounds the length of a line treated as a section heading.
const headingMaxRunes = 50

// The core fonts are cp1252; letters outside it are folded to their closest
// Latin form before translation.
var latinFold = strings.NewReplacer(
	"ğ", "g", "Ğ", "G",
	"ş", "s", "Ş", "S",
	"ı", "i", "İ", "I",
)

// Exporter renders plain text into a PDF document.
type Exporter struct {
	fontFamily string
}

func NewExporter() *Exporter { return &Exporter{fontFamily: "Helvetica"} }

// IsHeading reports whether line is rendered as a section heading: it has
// at least one letter, no lower-case letters and is shorter than 50 runes.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) >= headingMaxRunes {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsLower(r) {
			return false
		}
	}
	return hasLetter
}

// Render lays out title followed by every non-blank line.
func (e *Exporter) Render(title string, lines []string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(latinFold.Replace(s)) }

	doc.AddPage()
	doc.SetFont(e.fontFamily, "B", 18)
	doc.MultiCell(0, 10, text(title), "", "C", false)
	doc.Ln(4)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsHeading(line) {
			doc.Ln(2)
			doc.SetFont(e.fontFamily, "B", 13)
			doc.SetTextColor(0x1f, 0x3a, 0x5f)
			doc.MultiCell(0, 7, text(line), "", "L", false)
			doc.SetTextColor(0, 0, 0)
		} else {
			doc.SetFont(e.fontFamily, "", 11)
			doc.MultiCell(0, 6, text(line), "", "J", false)
		}
		doc.Ln(1.5)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// SplitLines splits free text on newlines, as received from clients.
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
