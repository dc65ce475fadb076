package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/document"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
)

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	URL           string
	UserAgent     string
	RatePerSecond float64
}

// HTTPSource fetches the listing page on every pass. Fetches are throttled
// to RatePerSecond.
type HTTPSource struct {
	pageHolder
	opts    HTTPOptions
	sel     extractor.Selectors
	limiter *rate.Limiter
}

// NewHTTPSource returns a source fetching opts.URL.
func NewHTTPSource(opts HTTPOptions, output string, sel extractor.Selectors, log logger.Logger) *HTTPSource {
	if log == nil {
		log = logger.NewNop()
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &HTTPSource{
		pageHolder: pageHolder{output: output, logger: log},
		opts:       opts,
		sel:        sel,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Elements fetches the page and returns its items.
func (s *HTTPSource) Elements(ctx context.Context) ([]pipeline.Element, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	page, err := document.ParseBytes(body, s.sel)
	if err != nil {
		return nil, err
	}
	s.setPage(page)
	return elements(page), nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	}
	if s.opts.UserAgent != "" {
		opts = append(opts, colly.UserAgent(s.opts.UserAgent))
	}
	c := colly.NewCollector(opts...)

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", s.opts.URL, r.StatusCode, err)
	})

	if err := c.Visit(s.opts.URL); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.opts.URL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if body == nil {
		return nil, errors.New("fetch " + s.opts.URL + ": empty response")
	}
	s.logger.Debug("Listing page fetched",
		logger.String("url", s.opts.URL),
		logger.Int("bytes", len(body)),
	)
	return body, nil
}
