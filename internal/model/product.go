package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexString decodes a JSON value that may arrive as either a string or a
// number. The vendor catalog is inconsistent about years and model IDs.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// Product is one vendor-reported vehicle variant.
type Product struct {
	Brand       string     `json:"brand"`
	Model       string     `json:"model"`
	ModelType   string     `json:"modelType"`
	NgtdModelID FlexString `json:"ngtdModelId"`
	Year        FlexString `json:"year"`
	LineOffDate string     `json:"lineOffDate"`
}

// ProductKey identifies the logical vehicle a variant belongs to. Year and
// line-off date vary across variants sharing a key.
type ProductKey struct {
	Brand       string
	Model       string
	ModelType   string
	NgtdModelID string
}

// Key returns the identity key used for grouping variants.
func (p Product) Key() ProductKey {
	return ProductKey{
		Brand:       p.Brand,
		Model:       p.Model,
		ModelType:   p.ModelType,
		NgtdModelID: string(p.NgtdModelID),
	}
}

// YearInt returns the production year, or -1 when missing or non-numeric.
func (p Product) YearInt() int {
	return ParseYear(string(p.Year))
}

// LineOffDay returns the date portion of the line-off timestamp. A missing or
// unparsable date sorts as the zero time, i.e. earliest possible.
func (p Product) LineOffDay() time.Time {
	return ParseISODay(p.LineOffDate)
}

// ParseYear parses a year string, returning -1 for anything non-numeric.
func ParseYear(s string) int {
	if s == "" {
		return -1
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// DateOnly truncates an ISO timestamp to its YYYY-MM-DD prefix.
func DateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseISODay parses the date portion of an ISO timestamp, returning the zero
// time when missing or malformed.
func ParseISODay(s string) time.Time {
	base := DateOnly(s)
	if base == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", base)
	if err != nil {
		return time.Time{}
	}
	return t
}
