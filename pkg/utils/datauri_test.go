package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestParseDataURIImage(t *testing.T) {
	raw := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(tinyPNG)

	uri, err := ParseDataURI(raw)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", uri.DeclaredType)
	assert.Equal(t, "image/png", uri.MIMEType)
	assert.Equal(t, ".png", uri.Extension)
	assert.Equal(t, "png", uri.ImageFormat())
	assert.True(t, uri.IsImage())
	assert.Equal(t, tinyPNG, uri.Data)
}

func TestParseDataURIPlainText(t *testing.T) {
	uri, err := ParseDataURI("data:,feeling%20better%20today")
	require.NoError(t, err)

	assert.Equal(t, "feeling better today", string(uri.Data))
	assert.False(t, uri.IsImage())
}

func TestParseDataURIRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"https://example.com/a.png",
		"data:image/png;base64",
		"data:image/png;base64,@@@",
		"data:image/png;base64,",
	} {
		_, err := ParseDataURI(raw)
		assert.ErrorIs(t, err, ErrInvalidDataURI, raw)
	}
}
