package gcp

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

// Moderator screens uploaded images with Cloud Vision SafeSearch.
type Moderator interface {
	CheckImage(ctx context.Context, img []byte) (*ModerationResult, error)
	Close() error
}

type ModerationResult struct {
	Flagged  bool     `json:"flagged"`
	Reasons  []string `json:"reasons,omitempty"`
	Adult    string   `json:"adult"`
	Violence string   `json:"violence"`
	Racy     string   `json:"racy"`
}

type visionModerator struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewModerator(log *logger.Logger) (Moderator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := vision.NewImageAnnotatorClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionModerator{log: log.With("service", "gcp.Moderator"), client: c}, nil
}

func (m *visionModerator) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Close()
}

func (m *visionModerator) CheckImage(ctx context.Context, img []byte) (*ModerationResult, error) {
	if len(img) == 0 {
		return &ModerationResult{}, nil
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 30*time.Second)
	defer cancel()

	resp, err := m.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_SAFE_SEARCH_DETECTION}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &ModerationResult{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	out := evaluateSafeSearch(r0.SafeSearchAnnotation)
	if out.Flagged {
		m.log.Warn("image flagged by moderation", "reasons", out.Reasons)
	}
	return out, nil
}

// evaluateSafeSearch flags adult or violent content at LIKELY or above. Racy is reported
// but never blocks.
func evaluateSafeSearch(a *visionpb.SafeSearchAnnotation) *ModerationResult {
	if a == nil {
		return &ModerationResult{}
	}
	out := &ModerationResult{
		Adult:    a.GetAdult().String(),
		Violence: a.GetViolence().String(),
		Racy:     a.GetRacy().String(),
	}
	if a.GetAdult() >= visionpb.Likelihood_LIKELY {
		out.Reasons = append(out.Reasons, "adult")
	}
	if a.GetViolence() >= visionpb.Likelihood_LIKELY {
		out.Reasons = append(out.Reasons, "violence")
	}
	out.Flagged = len(out.Reasons) > 0
	return out
}
