package app

import (
	"errors"
	"fmt"
	"strings"

	vendorsmod "github.com/yungbote/vowbridge-backend/internal/modules/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/cloudinary"
	"github.com/yungbote/vowbridge-backend/internal/platform/gcp"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

const (
	mediaProviderCloudinary = "cloudinary"
	mediaProviderDisabled   = "disabled"
)

var (
	newBucketServiceWithConfig = gcp.NewBucketServiceWithConfig
	newCloudinaryStore         = func(log *logger.Logger) (vendorsmod.MediaStore, error) {
		cfg, err := cloudinary.ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		return cloudinary.New(log, cfg)
	}
)

type MediaProviderBootstrapErrorCode string

const (
	MediaProviderBootstrapErrorInvalidMode         MediaProviderBootstrapErrorCode = "invalid_mode"
	MediaProviderBootstrapErrorMissingBucket       MediaProviderBootstrapErrorCode = "missing_bucket"
	MediaProviderBootstrapErrorMissingEmulatorHost MediaProviderBootstrapErrorCode = "missing_emulator_host"
	MediaProviderBootstrapErrorInvalidEmulatorHost MediaProviderBootstrapErrorCode = "invalid_emulator_host"
	MediaProviderBootstrapErrorConnectFailed       MediaProviderBootstrapErrorCode = "connect_failed"
)

type MediaProviderBootstrapError struct {
	Code         MediaProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *MediaProviderBootstrapError) Error() string {
	if e == nil {
		return "media storage bootstrap failed"
	}
	return fmt.Sprintf(
		"media storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *MediaProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveMediaStore picks where portfolio images live. A nil store with a nil error means
// uploads are disabled and answer 503.
func resolveMediaStore(log *logger.Logger, cfg MediaConfig) (vendorsmod.MediaStore, func() error, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch mode {
	case "", mediaProviderDisabled:
		log.Warn("Media storage disabled; portfolio uploads will be rejected")
		return nil, nil, nil
	case mediaProviderCloudinary:
		log.Info("Selecting media storage provider", "mode", mode)
		store, err := newCloudinaryStore(log)
		if err != nil {
			classified := &MediaProviderBootstrapError{Code: MediaProviderBootstrapErrorConnectFailed, Mode: mode, Cause: err}
			log.Error("Media storage provider bootstrap failed", "mode", mode, "error_code", classified.Code, "error", err)
			return nil, nil, classified
		}
		return store, nil, nil
	}

	storageCfg := gcp.ObjectStorageConfig{
		Mode:          gcp.ObjectStorageMode(mode),
		Bucket:        strings.TrimSpace(cfg.Bucket),
		CDNDomain:     strings.TrimSpace(cfg.CDNDomain),
		EmulatorHost:  strings.TrimSpace(cfg.EmulatorHost),
		PublicBaseURL: strings.TrimSpace(cfg.PublicBaseURL),
	}
	if err := storageCfg.Validate(); err != nil {
		classified := classifyMediaProviderBootstrapError(storageCfg, err)
		log.Error("Media storage provider selection failed", "mode", mode, "error_code", classified.Code, "error", err)
		return nil, nil, classified
	}

	log.Info(
		"Selecting media storage provider",
		"mode", storageCfg.Mode,
		"bucket", storageCfg.Bucket,
		"emulator_host", storageCfg.EmulatorHost,
	)
	bucket, err := newBucketServiceWithConfig(log, storageCfg)
	if err != nil {
		classified := classifyMediaProviderBootstrapError(storageCfg, err)
		log.Error(
			"Media storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", classified.Code,
			"error", classified,
		)
		return nil, nil, classified
	}
	return bucket, bucket.Close, nil
}

func classifyMediaProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) *MediaProviderBootstrapError {
	out := &MediaProviderBootstrapError{
		Code:         MediaProviderBootstrapErrorConnectFailed,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			out.Code = MediaProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingBucket:
			out.Code = MediaProviderBootstrapErrorMissingBucket
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			out.Code = MediaProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost, gcp.ObjectStorageConfigErrorInvalidPublicBaseURL:
			out.Code = MediaProviderBootstrapErrorInvalidEmulatorHost
		}
	}
	return out
}
