package imaging

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	CardWidth  = 1200
	CardHeight = 630
)

// QRCode renders content as a PNG QR code of size x size pixels.
func QRCode(content string, size int) ([]byte, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("qr content required")
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

type CardInput struct {
	Title    string
	Subtitle string
	Footer   string
	URL      string
}

var (
	fontsOnce sync.Once
	fontsErr  error
	titleFont *truetype.Font
	bodyFont  *truetype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		titleFont, fontsErr = truetype.Parse(gobold.TTF)
		if fontsErr != nil {
			return
		}
		bodyFont, fontsErr = truetype.Parse(goregular.TTF)
	})
	return fontsErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
}

// ShareCard renders a 1200x630 PNG with the registry title, date line and a QR code
// pointing at the public registry URL.
func ShareCard(in CardInput) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	dc := gg.NewContext(CardWidth, CardHeight)

	dc.SetColor(color.NRGBA{R: 0xFB, G: 0xF7, B: 0xF2, A: 0xFF})
	dc.Clear()
	dc.SetColor(color.NRGBA{R: 0xC9, G: 0xA2, B: 0x7E, A: 0xFF})
	dc.DrawRectangle(0, 0, CardWidth, 18)
	dc.Fill()

	const qrSize = 300
	textWidth := float64(CardWidth - qrSize - 180)

	dc.SetColor(color.NRGBA{R: 0x2E, G: 0x24, B: 0x1F, A: 0xFF})
	dc.SetFontFace(face(titleFont, 64))
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Our Registry"
	}
	dc.DrawStringWrapped(title, 80, 120, 0, 0, textWidth, 1.2, gg.AlignLeft)

	dc.SetColor(color.NRGBA{R: 0x6B, G: 0x5B, B: 0x52, A: 0xFF})
	dc.SetFontFace(face(bodyFont, 36))
	if s := strings.TrimSpace(in.Subtitle); s != "" {
		dc.DrawStringWrapped(s, 80, 360, 0, 0, textWidth, 1.3, gg.AlignLeft)
	}
	if f := strings.TrimSpace(in.Footer); f != "" {
		dc.SetFontFace(face(bodyFont, 26))
		dc.DrawStringWrapped(f, 80, 540, 0, 0, textWidth, 1.2, gg.AlignLeft)
	}

	if u := strings.TrimSpace(in.URL); u != "" {
		qr, err := qrcode.New(u, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		dc.DrawImage(qr.Image(qrSize), CardWidth-qrSize-80, (CardHeight-qrSize)/2)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
