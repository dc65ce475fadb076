// Package source loads listing pages for the pipeline, from disk or over HTTP,
// and writes the filtered page back out after each pass.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/config"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/document"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
)

const outputPerm = 0o644

// PageSource is an item source backed by a parsed listing page.
type PageSource interface {
	pipeline.ItemSource
	pipeline.Committer
	// Page returns the page loaded by the most recent pass.
	Page() *document.Page
}

// New builds the source described by cfg.
func New(cfg config.SourceConfig, output string, sel extractor.Selectors, log logger.Logger) (PageSource, error) {
	switch cfg.Kind {
	case config.SourceFile:
		return NewFileSource(cfg.Path, output, sel, log), nil
	case config.SourceHTTP:
		return NewHTTPSource(HTTPOptions{
			URL:           cfg.URL,
			UserAgent:     cfg.UserAgent,
			RatePerSecond: cfg.RatePerSecond,
		}, output, sel, log), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// pageHolder keeps the current page and renders it to the output path.
type pageHolder struct {
	mu     sync.RWMutex
	page   *document.Page
	output string
	logger logger.Logger
}

func (h *pageHolder) Page() *document.Page {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.page
}

func (h *pageHolder) setPage(p *document.Page) {
	h.mu.Lock()
	h.page = p
	h.mu.Unlock()
}

// Commit writes the current page to the output path, if one is set.
func (h *pageHolder) Commit(_ context.Context) error {
	page := h.Page()
	if h.output == "" || page == nil {
		return nil
	}
	html, err := page.HTML()
	if err != nil {
		return err
	}
	if err = writeFileAtomic(h.output, []byte(html)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	h.logger.Debug("Filtered page written", logger.String("path", h.output))
	return nil
}

func elements(p *document.Page) []pipeline.Element {
	els := p.Elements()
	out := make([]pipeline.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), outputPerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
