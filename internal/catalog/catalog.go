// Package catalog retrieves the vendor product catalog and collapses
// duplicate variants to one representative per logical vehicle.
package catalog

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/fetcher"
	"github.com/autodocs/manuals-cli/internal/model"
)

// FetchProducts retrieves the full list of vehicle product variants. A
// failure here is fatal for the whole run; there is no local fallback.
func FetchProducts(ctx context.Context, f *fetcher.Fetcher, apiBase string) ([]model.Product, error) {
	resp, err := f.Get(ctx, apiBase+"/pubhub/info/products")
	if err != nil {
		return nil, eris.Wrap(err, "catalog: fetch products")
	}
	defer resp.Body.Close() //nolint:errcheck

	products, err := fetcher.DecodeJSONArray[model.Product](resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: decode products")
	}

	zap.L().Info("fetched product catalog", zap.Int("products", len(products)))
	return products, nil
}
