package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 7 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeUploadDownscalesLongSide(t *testing.T) {
	out, err := NormalizeUpload(encodePNG(t, 3200, 1600), DefaultMaxDimension)
	if err != nil {
		t.Fatalf("NormalizeUpload: %v", err)
	}
	if out.Width != 1600 || out.Height != 800 {
		t.Fatalf("want 1600x800, got %dx%d", out.Width, out.Height)
	}
	if out.ContentType != "image/png" || out.Ext != ".png" {
		t.Fatalf("png source should stay png, got %s", out.ContentType)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil || format != "png" || cfg.Width != 1600 {
		t.Fatalf("output not a 1600px png: %v %s %+v", err, format, cfg)
	}
}

func TestNormalizeUploadPortraitJPEG(t *testing.T) {
	out, err := NormalizeUpload(encodeJPEG(t, 1000, 4000), 1600)
	if err != nil {
		t.Fatalf("NormalizeUpload: %v", err)
	}
	if out.Width != 400 || out.Height != 1600 {
		t.Fatalf("want 400x1600, got %dx%d", out.Width, out.Height)
	}
	if out.ContentType != "image/jpeg" || out.Ext != ".jpg" {
		t.Fatalf("jpeg source should stay jpeg, got %s", out.ContentType)
	}
}

func TestNormalizeUploadKeepsSmallImages(t *testing.T) {
	out, err := NormalizeUpload(encodePNG(t, 640, 480), 1600)
	if err != nil {
		t.Fatalf("NormalizeUpload: %v", err)
	}
	if out.Width != 640 || out.Height != 480 {
		t.Fatalf("small image should keep its size, got %dx%d", out.Width, out.Height)
	}
}

func TestNormalizeUploadRejectsGarbage(t *testing.T) {
	_, err := NormalizeUpload([]byte("definitely not an image"), 1600)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestQRCodeProducesSquarePNG(t *testing.T) {
	data, err := QRCode("https://vowbridge.test/registry/abc", 256)
	if err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "png" || cfg.Width != 256 || cfg.Height != 256 {
		t.Fatalf("unexpected qr output: %v %s %+v", err, format, cfg)
	}
	if _, err := QRCode("  ", 256); err == nil {
		t.Fatalf("expected error for empty content")
	}
}

func TestShareCardDimensions(t *testing.T) {
	data, err := ShareCard(CardInput{
		Title:    "Ana & Luis",
		Subtitle: "June 14, 2027 · Lisbon",
		Footer:   "Scan to contribute",
		URL:      "https://vowbridge.test/registry/abc",
	})
	if err != nil {
		t.Fatalf("ShareCard: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "png" || cfg.Width != CardWidth || cfg.Height != CardHeight {
		t.Fatalf("unexpected card: %v %s %+v", err, format, cfg)
	}
}
