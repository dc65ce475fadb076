package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/document"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
)

// FileSource reads a listing page from disk. The file is re-parsed only
// when its size or modification time changes, so ids assigned to items
// without one stay stable between passes over the same document.
type FileSource struct {
	pageHolder
	path string
	sel  extractor.Selectors

	modTime time.Time
	size    int64
}

// NewFileSource returns a source reading path. When output is non-empty
// the filtered page is written there after every pass.
func NewFileSource(path, output string, sel extractor.Selectors, log logger.Logger) *FileSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &FileSource{
		pageHolder: pageHolder{output: output, logger: log},
		path:       path,
		sel:        sel,
	}
}

// Elements returns the items of the current document.
func (s *FileSource) Elements(_ context.Context) ([]pipeline.Element, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}

	page := s.Page()
	if page == nil || !info.ModTime().Equal(s.modTime) || info.Size() != s.size {
		f, openErr := os.Open(s.path)
		if openErr != nil {
			return nil, fmt.Errorf("open %s: %w", s.path, openErr)
		}
		defer f.Close()

		page, err = document.Parse(f, s.sel)
		if err != nil {
			return nil, err
		}
		s.setPage(page)
		s.modTime, s.size = info.ModTime(), info.Size()
		s.logger.Debug("Listing file loaded", logger.String("path", s.path))
	}

	return elements(page), nil
}
