// Package testutil builds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
)

// PDF renders each line as its own text cell on a single A4 page.
// Compression is off so the content stream stays plain.
func PDF(t testing.TB, lines ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetMargins(10, 10, 10)
	doc.SetAutoPageBreak(true, 10)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		doc.Cell(0, 8, line)
		doc.Ln(8)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

// BlankPDF renders a page with no text on it.
func BlankPDF(t testing.TB) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}
