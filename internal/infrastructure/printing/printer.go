package printing

import (
	"context"

	"github.com/sibarkumen/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Output is a rendered document ready to send.
type Output struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Printer renders sheets with the office letterhead applied. Without a
// PDF renderer it returns the HTML page.
type Printer struct {
	office   Office
	renderer PDFRenderer
	logger   *zap.Logger
}

// NewPrinter creates a Printer. renderer may be nil.
func NewPrinter(cfg config.PrintingConfig, renderer PDFRenderer, logger *zap.Logger) *Printer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Printer{
		office:   Office{Name: cfg.OfficeName, Address: cfg.OfficeAddress, City: cfg.OfficeCity},
		renderer: renderer,
		logger:   logger,
	}
}

// Print renders s.
func (p *Printer) Print(ctx context.Context, s *Sheet) (*Output, error) {
	if s.Office == (Office{}) {
		s.Office = p.office
	}
	html, err := RenderHTML(s)
	if err != nil {
		return nil, err
	}
	if p.renderer == nil {
		return &Output{Data: html, ContentType: "text/html; charset=utf-8", Filename: s.Filename("html")}, nil
	}

	pdf, err := p.renderer.RenderPDF(ctx, html)
	if err != nil {
		p.logger.Error("PDF rendering failed", zap.String("number", s.Number), zap.Error(err))
		return nil, err
	}
	return &Output{Data: pdf, ContentType: "application/pdf", Filename: s.Filename("pdf")}, nil
}

// Close releases the renderer.
func (p *Printer) Close() error {
	if p.renderer == nil {
		return nil
	}
	return p.renderer.Close()
}
