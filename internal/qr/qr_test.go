package qr_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"ms-canteen/internal/qr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderURL(t *testing.T) {
	gen := qr.NewGenerator("https://canteen.example")
	assert.Equal(t, "https://canteen.example/api/order/o1", gen.OrderURL("o1"))
}

func TestGeneratePNG(t *testing.T) {
	gen := qr.NewGenerator("https://canteen.example")

	raw, err := gen.GeneratePNG("o1")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestGenerateDataURL(t *testing.T) {
	gen := qr.NewGenerator("https://canteen.example")

	dataURL, err := gen.GenerateDataURL("o1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}
