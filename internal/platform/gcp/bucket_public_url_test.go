package gcp

import (
	"strings"
	"testing"
)

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		bs   *bucketService
		key  string
		want string
	}{
		{
			name: "gcs default",
			bs:   &bucketService{bucket: "vb-media"},
			key:  "portfolio/v1/a.jpg",
			want: "https://storage.googleapis.com/vb-media/portfolio/v1/a.jpg",
		},
		{
			name: "cdn domain",
			bs:   &bucketService{bucket: "vb-media", cdnDomain: "cdn.example.com"},
			key:  "/portfolio/v1/a.jpg",
			want: "https://cdn.example.com/portfolio/v1/a.jpg",
		},
		{
			name: "public base url",
			bs:   &bucketService{bucket: "vb-media", publicBaseURL: "http://localhost:4443"},
			key:  "portfolio/v1/a.jpg",
			want: "http://localhost:4443/vb-media/portfolio/v1/a.jpg",
		},
		{
			name: "emulator media endpoint",
			bs: &bucketService{
				bucket:       "vb-media",
				storageMode:  ObjectStorageModeGCSEmulator,
				emulatorHost: "http://fake-gcs:4443",
			},
			key:  "portfolio/v1/a.jpg",
			want: "http://fake-gcs:4443/storage/v1/b/vb-media/o/portfolio%2Fv1%2Fa.jpg?alt=media",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bs.PublicURL(tc.key); got != tc.want {
				t.Fatalf("PublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	for key, want := range map[string]string{
		"portfolio/a.JPG":     "image/jpeg",
		"portfolio/a.png?v=1": "image/png",
		"portfolio/a.webp":    "image/webp",
		"portfolio/a.bin":     "",
	} {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
	if strings.Contains(normalizeKey("  /a/b.png "), " ") {
		t.Fatalf("normalizeKey should trim whitespace")
	}
}
