package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type Config struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
	Folder    string `env:"CLOUDINARY_FOLDER" envDefault:"vowbridge"`
	// UploadPrefix overrides the API host; used against local fakes.
	UploadPrefix string `env:"CLOUDINARY_UPLOAD_PREFIX"`
}

func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse cloudinary env: %w", err)
	}
	return cfg, nil
}

// Store uploads media to Cloudinary. Keys map to public ids without their extension.
type Store struct {
	log    *logger.Logger
	client *cld.Cloudinary
	folder string
}

func New(log *logger.Logger, cfg Config) (*Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.CloudName) == "" || strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, fmt.Errorf("missing CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY / CLOUDINARY_API_SECRET")
	}
	c, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	if p := strings.TrimRight(strings.TrimSpace(cfg.UploadPrefix), "/"); p != "" {
		c.Config.API.UploadPrefix = p
	}
	return &Store{
		log:    log.With("client", "CloudinaryStore"),
		client: c,
		folder: strings.Trim(strings.TrimSpace(cfg.Folder), "/"),
	}, nil
}

func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	publicID := s.publicID(key)
	if publicID == "" {
		return "", fmt.Errorf("object key required")
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 60*time.Second)
	defer cancel()

	resp, err := s.client.Upload.Upload(ctx, body, uploader.UploadParams{
		PublicID:     publicID,
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("cloudinary upload: empty response")
	}
	if msg := strings.TrimSpace(resp.Error.Message); msg != "" {
		return "", fmt.Errorf("cloudinary upload: %s", msg)
	}
	s.log.Debug("media uploaded", "public_id", resp.PublicID, "content_type", contentType)
	return resp.SecureURL, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 30*time.Second)
	defer cancel()
	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: s.publicID(key)})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp != nil && strings.TrimSpace(resp.Error.Message) != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}

func (s *Store) publicID(key string) string {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return ""
	}
	key = strings.TrimSuffix(key, path.Ext(key))
	if s.folder == "" {
		return key
	}
	return s.folder + "/" + key
}
