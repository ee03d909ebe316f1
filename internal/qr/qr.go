package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Generator renders order QR codes. The payload is the public order
// URL, scanned at the counter to pull up the order.
type Generator struct {
	baseURL string
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: baseURL}
}

func (g *Generator) OrderURL(orderID string) string {
	return fmt.Sprintf("%s/api/order/%s", g.baseURL, orderID)
}

// GeneratePNG renders the QR for an order as a PNG image.
func (g *Generator) GeneratePNG(orderID string) ([]byte, error) {
	return qrcode.Encode(g.OrderURL(orderID), qrcode.Medium, 256)
}

// GenerateDataURL renders the QR as a data URL suitable for storing on
// the order row and embedding in web views.
func (g *Generator) GenerateDataURL(orderID string) (string, error) {
	png, err := g.GeneratePNG(orderID)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
