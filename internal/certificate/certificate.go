// Package certificate renders course completion certificates.
//
// Rendering is an optional integration: the server installs PDFRenderer
// when certificates are enabled and NoopRenderer otherwise. Callers hold
// the Renderer interface and never know which one they got.
package certificate

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/openlearn/academy/api/internal/model"
)

// Renderer produces a certificate document for a completed course.
type Renderer interface {
	Render(ctx context.Context, cert *model.Certificate, user *model.User, course *model.Course) ([]byte, error)
}

// PDFRenderer renders an A4 landscape PDF certificate.
type PDFRenderer struct{}

// NewPDFRenderer returns the real PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the certificate PDF.
func (r *PDFRenderer) Render(ctx context.Context, cert *model.Certificate, user *model.User, course *model.Course) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := user.Email
	if user.FullName != nil && *user.FullName != "" {
		name = *user.FullName
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetY(50)
	pdf.CellFormat(0, 16, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.Ln(10)
	pdf.CellFormat(0, 10, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, "has successfully completed the course", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, course.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.Ln(14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Certificate No. %s", cert.CertificateNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, cert.IssuedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("certificate: rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// NoopRenderer is the inert stand-in used when rendering is disabled.
// Render succeeds with no document so the completion flow never depends
// on the PDF integration.
type NoopRenderer struct{}

// NewNoopRenderer returns the inert renderer.
func NewNoopRenderer() *NoopRenderer {
	return &NoopRenderer{}
}

// Render is a no-op.
func (r *NoopRenderer) Render(ctx context.Context, cert *model.Certificate, user *model.User, course *model.Course) ([]byte, error) {
	return nil, nil
}
