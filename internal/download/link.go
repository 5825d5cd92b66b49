// Package download resolves direct PDF links and performs idempotent,
// collision-safe manual downloads.
package download

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/fetcher"
	"github.com/autodocs/manuals-cli/internal/model"
)

// ErrMissingFields signals a publication lacking one of the three fields the
// link endpoint requires. Callers skip the product and continue.
var ErrMissingFields = eris.New("publication missing fields required for pdf link")

// ErrNoLink signals that the endpoint could not produce a download URL for
// this publication. Callers skip the product and continue.
var ErrNoLink = eris.New("no pdf link available")

// softLinkStatuses are endpoint responses meaning "this manual is not
// resolvable", not "the service is broken". One unresolvable manual must not
// abort the batch.
var softLinkStatuses = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusNotFound:            true,
	http.StatusInternalServerError: true,
}

type linkResponse struct {
	URL string `json:"url"`
}

// ResolveLink asks the vendor for a direct download URL. The endpoint wants
// exactly partNumber, modelType, and the date-only line-off date.
func ResolveLink(ctx context.Context, f *fetcher.Fetcher, apiBase string, pub model.Publication) (string, error) {
	lineOff := model.DateOnly(pub.LineOffDate)
	if pub.PartNumber == "" || pub.ModelType == "" || lineOff == "" {
		zap.L().Warn("missing keys for pdf link",
			zap.String("part_number", pub.PartNumber),
			zap.String("model_type", pub.ModelType),
			zap.String("line_off_date", lineOff),
		)
		return "", ErrMissingFields
	}

	q := url.Values{}
	q.Set("partNumber", pub.PartNumber)
	q.Set("modelType", pub.ModelType)
	q.Set("lineOffDate", lineOff)
	linkURL := apiBase + "/publications/content/pdfLink?" + q.Encode()

	zap.L().Debug("pdf link request", zap.String("url", linkURL))

	resp, err := f.Get(ctx, linkURL)
	if err != nil {
		var statusErr *fetcher.StatusError
		if eris.As(err, &statusErr) && softLinkStatuses[statusErr.Code] {
			zap.L().Warn("pdf link endpoint rejected publication",
				zap.Int("status", statusErr.Code),
				zap.String("part_number", pub.PartNumber),
				zap.String("body", truncate(statusErr.Body, 200)),
			)
			return "", ErrNoLink
		}
		return "", eris.Wrap(err, "download: pdf link request")
	}
	defer resp.Body.Close() //nolint:errcheck

	link, err := fetcher.DecodeJSONObject[linkResponse](resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "download: decode pdf link response")
	}
	if link.URL == "" {
		return "", ErrNoLink
	}
	return link.URL, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
