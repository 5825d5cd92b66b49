package download

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autodocs/manuals-cli/internal/model"
)

func TestFileName(t *testing.T) {
	got := FileName("Toyota", "RAV4", "XA50", "2024", "OM12345")
	assert.Equal(t, "Toyota.RAV4.XA50.2024.OM12345.pdf", got)
}

func TestFileName_SanitizesPathCharacters(t *testing.T) {
	got := FileName("Toyota/Lexus", "Land Cruiser", "", "2023", "OM:1")
	assert.Equal(t, "Toyota_Lexus.Land_Cruiser.2023.OM_1.pdf", got)
}

func TestFileName_DropsEmptyComponents(t *testing.T) {
	got := FileName("Toyota", "", "XA50", "", "OM1")
	assert.Equal(t, "Toyota.XA50.OM1.pdf", got)
}

func TestFileName_AllEmptyFallsBack(t *testing.T) {
	assert.Equal(t, "manual.pdf", FileName("", "", "", "", ""))
	// Components that sanitize away entirely also fall back.
	assert.Equal(t, "manual.pdf", FileName("///", "", "", "", "___"))
}

func TestFileName_CapsLongComponents(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "abcdefghij"
	}
	got := FileName(long, "", "", "", "")
	// 200-char cap plus the extension.
	assert.Len(t, got, 200+len(".pdf"))
}

func TestPreferredYear(t *testing.T) {
	tests := []struct {
		name string
		pub  model.Publication
		prod model.Product
		want string
	}{
		{
			name: "publication year wins",
			pub:  model.Publication{Year: "2024", LineOffDate: "2022-01-01"},
			prod: model.Product{Year: "2020"},
			want: "2024",
		},
		{
			name: "falls back to product year",
			pub:  model.Publication{Year: "unknown"},
			prod: model.Product{Year: "2021"},
			want: "2021",
		},
		{
			name: "numeric normalization strips padding",
			pub:  model.Publication{Year: "0042"},
			want: "42",
		},
		{
			name: "falls back to line-off prefix",
			pub:  model.Publication{LineOffDate: "2019-05-01T00:00:00"},
			want: "2019",
		},
		{
			name: "nothing usable",
			pub:  model.Publication{Year: "n/a", LineOffDate: "soon"},
			prod: model.Product{Year: "TBD"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreferredYear(tt.pub, tt.prod))
		})
	}
}
