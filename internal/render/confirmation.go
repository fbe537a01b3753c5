package render

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/shb-modernhill/confirmation-form-api/internal/models"
)

// Overlay geometry in points on a letter page, measured from the top-left
// corner. The source layout was measured from the bottom edge, hence the
// pageHeight offsets.
const (
	pageWidth  = 612.0
	pageHeight = 792.0

	textLeft   = 100.0
	firstLineY = pageHeight - 675.0
	lineHeight = 25.0

	closingLineY = pageHeight - 350.0

	signatureLeft   = 100.0
	signatureWidth  = 200.0
	signatureHeight = 50.0
	signatureTop    = pageHeight - 400.0 - signatureHeight
)

const timestampLayout = "2006-01-02 15:04:05"

const signatureImageName = "signature"

// Renderer overlays submission values and the optional signature image onto
// the first page of a confirmation template. Every call builds a fresh
// document; no drawing state is shared between calls.
type Renderer struct {
	loc *time.Location
}

// NewRenderer constructs a Renderer stamping timestamps in the given zone.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

// Render returns the template's first page merged with the overlay as PDF
// bytes. The template source is never mutated.
func (r *Renderer) Render(template []byte, sub models.Submission, renderedAt time.Time) (out []byte, err error) {
	if len(template) == 0 {
		return nil, fmt.Errorf("empty template")
	}

	// The template importer panics on malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("import template page: %v", rec)
		}
	}()

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(false)

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(template))
	tpl := importer.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")

	pdf.AddPage()
	importer.UseImportedTemplate(pdf, tpl, 0, 0, pageWidth, pageHeight)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)

	y := firstLineY
	for _, line := range overlayLines(sub, renderedAt.In(r.loc)) {
		pdf.Text(textLeft, y, line)
		y += lineHeight
	}

	if len(sub.Signature) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(signatureImageName, opts, bytes.NewReader(sub.Signature))
		pdf.ImageOptions(signatureImageName, signatureLeft, signatureTop, signatureWidth, signatureHeight, false, opts, 0, "")
	}

	pdf.Text(textLeft, closingLineY, "Orang Tua/Wali")

	if pdf.Err() {
		return nil, fmt.Errorf("compose overlay: %w", pdf.Error())
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("write confirmation pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// DocumentFilename derives the attachment name from the student name.
func DocumentFilename(studentName string) string {
	return fmt.Sprintf("%s_form.pdf", studentName)
}

func overlayLines(sub models.Submission, stamp time.Time) []string {
	return []string{
		"Menyatakan dengan ini bahwa:",
		fmt.Sprintf("Nama Peserta Didik           : %s", sub.StudentName),
		fmt.Sprintf("Kelas                                  : %s", sub.Grade),
		fmt.Sprintf("Nama Orang Tua               : %s", sub.ParentName),
		fmt.Sprintf("WA aktif Orang Tua/Wali   : %s", sub.Phone),
		fmt.Sprintf("Email aktif Orang Tua/Wali: %s", sub.Email),
		fmt.Sprintf("Timestamp: %s", stamp.Format(timestampLayout)),
		"Demikian konfirmasi dari kami. Terima Kasih.",
		"Hormat Kami,",
	}
}
