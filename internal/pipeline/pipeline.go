// Package pipeline drives the manual-acquisition workflow: catalog fetch,
// variant merge, then a sequential per-product resolution and download loop.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/catalog"
	"github.com/autodocs/manuals-cli/internal/download"
	"github.com/autodocs/manuals-cli/internal/fetcher"
	"github.com/autodocs/manuals-cli/internal/model"
	"github.com/autodocs/manuals-cli/internal/pubs"
)

// Options configures a pipeline run.
type Options struct {
	APIBase      string
	PortalBase   string
	OutDir       string
	Language     string
	ProductLimit int
	YearCap      int
	SiblingYears bool
	Merge        bool
	Force        bool
}

// Summary reports what a run accomplished.
type Summary struct {
	Products   int
	Downloaded int
	Skipped    int
}

// Pipeline holds the run dependencies.
type Pipeline struct {
	f    *fetcher.Fetcher
	opts Options
}

// New creates a Pipeline.
func New(f *fetcher.Fetcher, opts Options) *Pipeline {
	return &Pipeline{f: f, opts: opts}
}

// Run executes the full workflow. Products are processed one at a time;
// per-product failures are logged and skipped, so one unresolvable manual
// never aborts the batch. Catalog failures and unexpected link-endpoint
// statuses are fatal.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	allProducts, err := catalog.FetchProducts(ctx, p.f, p.opts.APIBase)
	if err != nil {
		return sum, err
	}

	base := allProducts
	if p.opts.Merge {
		base = catalog.Merge(allProducts)
	}
	if p.opts.ProductLimit > 0 && len(base) > p.opts.ProductLimit {
		base = base[:p.opts.ProductLimit]
	}
	sum.Products = len(base)

	if err := os.MkdirAll(p.opts.OutDir, 0o755); err != nil {
		return sum, eris.Wrapf(err, "pipeline: create output dir %s", p.opts.OutDir)
	}

	for i, prod := range base {
		if ctx.Err() != nil {
			return sum, eris.Wrap(ctx.Err(), "pipeline: cancelled")
		}

		log := zap.L().With(
			zap.Int("index", i+1),
			zap.Int("total", len(base)),
			zap.String("brand", prod.Brand),
			zap.String("model", prod.Model),
			zap.String("model_type", prod.ModelType),
		)

		saved, err := p.processProduct(ctx, log, prod, allProducts)
		if err != nil {
			return sum, err
		}
		if saved {
			sum.Downloaded++
		} else {
			sum.Skipped++
		}
	}

	zap.L().Info("pipeline complete",
		zap.Int("products", sum.Products),
		zap.Int("downloaded", sum.Downloaded),
		zap.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

// processProduct resolves and downloads one product's manual. Returns false
// (with nil error) for every recoverable-skip condition.
func (p *Pipeline) processProduct(ctx context.Context, log *zap.Logger, prod model.Product, allProducts []model.Product) (bool, error) {
	var years []string
	if p.opts.SiblingYears {
		years = catalog.YearsFor(prod, allProducts, p.opts.YearCap)
	} else if y := prod.YearInt(); y >= 0 {
		years = []string{string(prod.Year)}
	}

	pageURL := pubs.PageURL(p.opts.PortalBase, prod, years, p.opts.Language)
	log.Info("fetching publications page",
		zap.Strings("years", years),
		zap.String("url", pageURL),
	)

	html, err := p.f.GetHTML(ctx, pageURL)
	if err != nil {
		var statusErr *fetcher.StatusError
		if eris.As(err, &statusErr) {
			log.Warn("publications page unavailable", zap.Int("status", statusErr.Code))
			return false, nil
		}
		return false, eris.Wrap(err, "pipeline: fetch publications page")
	}

	payload := pubs.ParseHydration(html)
	if payload == nil {
		log.Warn("no hydration payload on publications page")
		return false, nil
	}

	candidates := pubs.Collect(payload)
	log.Info("publications on page", zap.Int("count", len(candidates)))

	om, err := pubs.SelectOwnersManual(candidates)
	if err != nil {
		log.Warn("no English owner's manual on this page")
		return false, nil
	}
	log.Info("selected owner's manual",
		zap.String("part_number", om.PartNumber),
		zap.String("title", om.Title),
		zap.String("line_off_date", om.LineOffDate),
	)

	pdfURL, err := download.ResolveLink(ctx, p.f, p.opts.APIBase, om)
	if err != nil {
		if eris.Is(err, download.ErrMissingFields) || eris.Is(err, download.ErrNoLink) {
			return false, nil
		}
		return false, err
	}

	modelType := om.ModelType
	if modelType == "" {
		modelType = prod.ModelType
	}
	if modelType == "" {
		modelType = prod.Model
	}
	name := download.FileName(
		prod.Brand,
		prod.Model,
		modelType,
		download.PreferredYear(om, prod),
		om.PartNumber,
	)
	path := filepath.Join(p.opts.OutDir, name)

	if _, err := download.Fetch(ctx, p.f, pdfURL, path, p.opts.Force); err != nil {
		return false, err
	}
	return true, nil
}
