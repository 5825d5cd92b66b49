package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductUnmarshal_StringAndNumericFields(t *testing.T) {
	data := `{"brand":"Toyota","model":"RAV4","modelType":"XA50","ngtdModelId":1234,"year":2024,"lineOffDate":"2024-03-01T00:00:00"}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, "Toyota", p.Brand)
	assert.Equal(t, "1234", string(p.NgtdModelID))
	assert.Equal(t, "2024", string(p.Year))
	assert.Equal(t, 2024, p.YearInt())
}

func TestProductUnmarshal_NullYear(t *testing.T) {
	data := `{"brand":"Toyota","model":"Yaris","year":null}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, "", string(p.Year))
	assert.Equal(t, -1, p.YearInt())
}

func TestParseYear(t *testing.T) {
	assert.Equal(t, 2024, ParseYear("2024"))
	assert.Equal(t, -1, ParseYear(""))
	assert.Equal(t, -1, ParseYear("n/a"))
	assert.Equal(t, -1, ParseYear("20.5"))
	assert.Equal(t, -1, ParseYear("-3"))
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2024-03-01", DateOnly("2024-03-01T12:30:00Z"))
	assert.Equal(t, "2024-03-01", DateOnly("2024-03-01"))
	assert.Equal(t, "", DateOnly(""))
}

func TestLineOffDay(t *testing.T) {
	p := Product{LineOffDate: "2021-06-15T00:00:00"}
	assert.Equal(t, time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC), p.LineOffDay())

	assert.True(t, Product{}.LineOffDay().IsZero())
	assert.True(t, Product{LineOffDate: "not-a-date"}.LineOffDay().IsZero())
}

func TestProductKey_IgnoresYearAndDate(t *testing.T) {
	a := Product{Brand: "Toyota", Model: "RAV4", ModelType: "XA50", NgtdModelID: "9", Year: "2022"}
	b := Product{Brand: "Toyota", Model: "RAV4", ModelType: "XA50", NgtdModelID: "9", Year: "2024", LineOffDate: "2024-01-01"}

	assert.Equal(t, a.Key(), b.Key())
}

func TestPublicationActionable(t *testing.T) {
	ok := Publication{PartNumber: "OM123", ModelType: "XA50", LineOffDate: "2024-01-01T00:00:00"}
	assert.True(t, ok.Actionable())

	assert.False(t, Publication{ModelType: "XA50", LineOffDate: "2024-01-01"}.Actionable())
	assert.False(t, Publication{PartNumber: "OM123", LineOffDate: "2024-01-01"}.Actionable())
	assert.False(t, Publication{PartNumber: "OM123", ModelType: "XA50"}.Actionable())
}
