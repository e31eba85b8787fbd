package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

// ObjectStorageMode selects real GCS or a fake-gcs-server emulator for local runs.
type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// ObjectStorageConfig describes where portfolio media is stored. PublicBaseURL overrides
// the host used in returned object URLs, e.g. when the emulator is reachable under a
// different name from the browser.
type ObjectStorageConfig struct {
	Mode          ObjectStorageMode
	Bucket        string
	CDNDomain     string
	EmulatorHost  string
	PublicBaseURL string
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode          ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingBucket        ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorMissingEmulatorHost  ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost  ObjectStorageConfigErrorCode = "invalid_emulator_host"
	ObjectStorageConfigErrorInvalidPublicBaseURL ObjectStorageConfigErrorCode = "invalid_public_base_url"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Mode  string
	Value string
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("media provider %q is not a storage mode (want %q or %q)", e.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorMissingBucket:
		return fmt.Sprintf("media provider %q requires media.bucket", e.Mode)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("media provider %q requires media.emulator_host", e.Mode)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("media.emulator_host %q must be an absolute URL like http://fake-gcs:4443", e.Value)
	case ObjectStorageConfigErrorInvalidPublicBaseURL:
		return fmt.Sprintf("media.public_base_url %q must be an absolute URL", e.Value)
	default:
		return "invalid object storage config"
	}
}

// Validate checks the config without touching the network.
func (cfg ObjectStorageConfig) Validate() error {
	mode := string(cfg.Mode)
	switch cfg.Mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
	default:
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: mode}
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Mode: mode}
	}
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" && !isAbsoluteURL(raw) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidPublicBaseURL, Mode: mode, Value: raw}
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}
	host := strings.TrimSpace(cfg.EmulatorHost)
	if host == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: mode}
	}
	if !isAbsoluteURL(host) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidEmulatorHost, Mode: mode, Value: host}
	}
	return nil
}

// publicBaseURL returns the host prefix for object URLs and where it came from. Empty
// means the default storage.googleapis.com form.
func (cfg ObjectStorageConfig) publicBaseURL() (string, string) {
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" {
		return strings.TrimRight(raw, "/"), "public_base_url"
	}
	if cfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"), "emulator_host"
	}
	return "", "gcs_default"
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
