package registry

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/imaging"
)

const defaultQRSize = 512

// RegistryQR renders the public registry link of an event as a PNG QR code.
func (u Usecases) RegistryQR(ctx context.Context, eventID uuid.UUID, size int) ([]byte, error) {
	if _, err := u.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if size <= 0 || size > 2048 {
		size = defaultQRSize
	}
	png, err := imaging.QRCode(u.RegistryURL(eventID), size)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "render_qr_failed", err)
	}
	return png, nil
}

// RegistryCard renders a shareable PNG card with the event title, date and registry QR.
func (u Usecases) RegistryCard(ctx context.Context, eventID uuid.UUID) ([]byte, error) {
	ev, err := u.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	subtitle := ev.EventDate.Format("January 2, 2006")
	if venue := strings.TrimSpace(ev.Venue); venue != "" {
		subtitle += " · " + venue
	}
	png, err := imaging.ShareCard(imaging.CardInput{
		Title:    ev.Title,
		Subtitle: subtitle,
		Footer:   "Scan to visit our registry",
		URL:      u.RegistryURL(eventID),
	})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "render_card_failed", err)
	}
	return png, nil
}
