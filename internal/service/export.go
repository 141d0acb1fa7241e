package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/pdf"
	"github.com/iliyamo/startera/internal/prompts"
)

// Renderer is the Document Exporter contract.
type Renderer interface {
	Render(title string, lines []string) ([]byte, error)
}

// Archiver stores a rendered document and returns its key.
type Archiver interface {
	Store(ctx context.Context, body []byte) (string, error)
}

// Document is a rendered file ready to be served.
type Document struct {
	Filename string
	Body     []byte
}

// ExportService renders plans to PDF and optionally archives them.
type ExportService struct {
	renderer Renderer
	archiver Archiver // nil: archiving disabled
	prompts  *prompts.Catalogue
	log      *zap.Logger
}

func NewExportService(r Renderer, a Archiver, catalogue *prompts.Catalogue, log *zap.Logger) *ExportService {
	return &ExportService{renderer: r, archiver: a, prompts: catalogue, log: log}
}

// Export renders text. Archive failures are logged and do not fail the export.
func (s *ExportService) Export(ctx context.Context, text string) (Document, error) {
	body, err := s.renderer.Render(s.prompts.PDFTitle, pdf.SplitLines(text))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", apperr.ErrInternal, err)
	}
	if s.archiver != nil {
		if key, err := s.archiver.Store(ctx, body); err != nil {
			s.log.Warn("pdf archive failed", zap.Error(err))
		} else {
			s.log.Info("pdf archived", zap.String("key", key), zap.Int("bytes", len(body)))
		}
	}
	return Document{Filename: s.prompts.PDFFilename, Body: body}, nil
}
