package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassagePayload(t *testing.T) {
	rec := PassageRecord{
		ID:      "uuid-1",
		Content: "Check tire pressure monthly.",
		Source:  "manuals/Toyota.RAV4.pdf",
		File:    "Toyota.RAV4.pdf",
		Page:    412,
	}

	payload := passagePayload(rec)
	assert.Equal(t, "Check tire pressure monthly.", payload["content"].GetStringValue())
	assert.Equal(t, "manuals/Toyota.RAV4.pdf", payload["source"].GetStringValue())
	assert.Equal(t, "Toyota.RAV4.pdf", payload["file"].GetStringValue())
	assert.Equal(t, int64(412), payload["page"].GetIntegerValue())
	assert.Equal(t, "Toyota.RAV4.pdf_412", payload["file_page"].GetStringValue())
	assert.Equal(t, "manuals/Toyota.RAV4.pdf#page=412", payload["uri"].GetStringValue())
}

func TestNewAndClose(t *testing.T) {
	// grpc.NewClient is lazy; no server needs to be listening.
	s, err := New("localhost:6334", "manuals")
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
