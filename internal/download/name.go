package download

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/autodocs/manuals-cli/internal/model"
)

const maxComponentLen = 200

// sanitizeComponent replaces every character outside [alnum . _ - space]
// with an underscore, strips leading/trailing separators, and caps length.
func sanitizeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("._- ", r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_ ")
	if len(cleaned) > maxComponentLen {
		cleaned = cleaned[:maxComponentLen]
	}
	return cleaned
}

// FileName builds the dot-joined collision-safe file name. Components that
// sanitize to empty are dropped; if nothing survives the name is manual.pdf.
func FileName(brand, vehicleModel, modelType, year, partNumber string) string {
	var segments []string
	for _, s := range []string{brand, vehicleModel, modelType, year, partNumber} {
		if s == "" {
			continue
		}
		if cleaned := sanitizeComponent(s); cleaned != "" {
			segments = append(segments, cleaned)
		}
	}

	base := "manual"
	if len(segments) > 0 {
		base = strings.Join(segments, ".")
	}
	base = strings.ReplaceAll(base, " ", "_")
	return base + ".pdf"
}

// PreferredYear picks the year component for naming: the publication's own
// year when numeric, else the product's, else the leading four digits of the
// line-off date, else empty.
func PreferredYear(pub model.Publication, prod model.Product) string {
	for _, candidate := range []string{pub.Year, string(prod.Year)} {
		if y := model.ParseYear(candidate); y >= 0 {
			return strconv.Itoa(y)
		}
	}
	lineOff := pub.LineOffDate
	if len(lineOff) >= 4 && model.ParseYear(lineOff[:4]) >= 0 {
		return lineOff[:4]
	}
	return ""
}
