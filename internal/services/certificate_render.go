package services

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
)

const (
	certWidth  = 1200
	certHeight = 850
)

var (
	certBackground = color.NRGBA{R: 0xFB, G: 0xF8, B: 0xF1, A: 0xFF}
	certAccent     = color.NRGBA{R: 0x1F, G: 0x4E, B: 0x79, A: 0xFF}
	certInk        = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
	certMuted      = color.NRGBA{R: 0x6B, G: 0x6B, B: 0x6B, A: 0xFF}
)

// CertificateRenderer draws certificates as PNG.
type CertificateRenderer struct {
	title   font.Face
	heading font.Face
	body    font.Face
	small   font.Face
}

// NewCertificateRenderer uses the TTF at fontPath for body text when set,
// otherwise the embedded Go fonts.
func NewCertificateRenderer(fontPath string) (*CertificateRenderer, error) {
	regular := goregular.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		regular = raw
	}
	body, err := truetype.Parse(regular)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold TTF: %w", err)
	}
	return &CertificateRenderer{
		title:   newFace(bold, 64),
		heading: newFace(bold, 44),
		body:    newFace(body, 28),
		small:   newFace(body, 20),
	}, nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (r *CertificateRenderer) Render(cert *types.Certificate) ([]byte, error) {
	if cert == nil {
		return nil, fmt.Errorf("certificate required")
	}

	dc := gg.NewContext(certWidth, certHeight)
	dc.SetColor(certBackground)
	dc.Clear()

	dc.SetColor(certAccent)
	dc.SetLineWidth(12)
	dc.DrawRectangle(30, 30, certWidth-60, certHeight-60)
	dc.Stroke()
	dc.SetLineWidth(2)
	dc.DrawRectangle(54, 54, certWidth-108, certHeight-108)
	dc.Stroke()

	cx := float64(certWidth) / 2

	dc.SetFontFace(r.title)
	dc.DrawStringAnchored("Certificate of Achievement", cx, 170, 0.5, 0.5)

	dc.SetColor(certMuted)
	dc.SetFontFace(r.body)
	dc.DrawStringAnchored("This certifies that", cx, 270, 0.5, 0.5)

	name := "Student"
	if cert.Student != nil {
		if n := strings.TrimSpace(cert.Student.FullName()); n != "" {
			name = n
		}
	}
	dc.SetColor(certInk)
	dc.SetFontFace(r.heading)
	dc.DrawStringAnchored(name, cx, 350, 0.5, 0.5)

	dc.SetColor(certMuted)
	dc.SetFontFace(r.body)
	dc.DrawStringAnchored("has successfully passed", cx, 430, 0.5, 0.5)

	examTitle := "LingoBridge exam"
	if cert.Exam != nil && strings.TrimSpace(cert.Exam.Title) != "" {
		examTitle = cert.Exam.Title
		if cert.Exam.Level != "" {
			examTitle = fmt.Sprintf("%s (%s)", examTitle, cert.Exam.Level)
		}
	}
	dc.SetColor(certAccent)
	dc.SetFontFace(r.heading)
	dc.DrawStringAnchored(examTitle, cx, 505, 0.5, 0.5)

	dc.SetColor(certInk)
	dc.SetFontFace(r.body)
	dc.DrawStringAnchored(fmt.Sprintf("Score: %.2f%%", cert.Percentage), cx, 590, 0.5, 0.5)
	dc.DrawStringAnchored(cert.IssuedAt.UTC().Format("January 2, 2006"), cx, 635, 0.5, 0.5)

	dc.SetColor(certMuted)
	dc.SetFontFace(r.small)
	dc.DrawStringAnchored("Verification code: "+cert.Code, cx, certHeight-110, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
