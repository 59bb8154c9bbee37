// Package export renders transcripts into documents for reading.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
	fontColor = "000000"
)

// DocxName returns the document path for a transcript or consensus file.
func DocxName(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".docx"
}

// Docx writes rec to path as a Word document: the title, then one
// paragraph per segment. Consecutive duplicate lines are dropped.
func Docx(title string, rec transcript.Record, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, titleSize)
	if rec.Language != "" {
		addStyledRun(doc.AddParagraph(""), "Language: "+rec.Language, false, fontSize)
	}
	doc.AddParagraph("")

	for _, line := range Lines(rec) {
		addStyledRun(doc.AddParagraph(""), line, false, fontSize)
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Lines returns the paragraphs rendered for rec. Segments are preferred;
// a record without segments falls back to its full text.
func Lines(rec transcript.Record) []string {
	var raw []string
	for _, seg := range rec.Segments {
		raw = append(raw, seg.Text)
	}
	if len(raw) == 0 {
		raw = []string{rec.Text}
	}

	var out []string
	prev := ""
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == prev {
			continue
		}
		prev = trimmed
		out = append(out, trimmed)
	}
	return out
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color(fontColor)
	if bold {
		run.Bold(true)
	}
}
