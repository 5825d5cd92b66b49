// Package pubs builds publications-page requests, mines the embedded
// hydration payload for publication records, and selects the owner's manual.
package pubs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/autodocs/manuals-cli/internal/model"
)

// PageURL builds the publications listing URL for a product. Year filters are
// positional indexed keys (year[0], year[1], ...). Keys with empty values are
// omitted entirely.
func PageURL(portalBase string, prod model.Product, years []string, language string) string {
	modelType := prod.ModelType
	if modelType == "" {
		modelType = prod.Model
	}

	type param struct{ key, val string }
	params := []param{
		{"brand", prod.Brand},
		{"model", prod.Model},
		{"modelType", modelType},
		{"ngtdModelId", string(prod.NgtdModelID)},
		{"language", language},
	}
	for i, y := range years {
		params = append(params, param{fmt.Sprintf("year[%d]", i), y})
	}

	var parts []string
	for _, p := range params {
		if p.val == "" {
			continue
		}
		// Percent-encode (space as %20, not '+') to match the portal's parser.
		escaped := strings.ReplaceAll(url.QueryEscape(p.val), "+", "%20")
		parts = append(parts, p.key+"="+escaped)
	}
	return portalBase + "/publications?" + strings.Join(parts, "&")
}
