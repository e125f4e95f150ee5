// Package invite builds invitation links, their QR codes and the set of
// statuses a QR code may expose.
package invite

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"eventdash/internal/core"
)

// MaxStatuses is how many QR statuses can be enabled at once.
const MaxStatuses = 2

// DefaultQRSize is the PNG edge length in pixels.
const DefaultQRSize = 256

var (
	ErrUnknownStatus   = errors.New("unknown QR status")
	ErrTooManyStatuses = fmt.Errorf("at most %d QR statuses can be enabled", MaxStatuses)
)

// InvitationURL returns the public registration link for an event.
func InvitationURL(baseURL, eventID string) string {
	return strings.TrimRight(baseURL, "/") + "/invite/" + url.PathEscape(eventID)
}

// QRCode renders content as a PNG with medium error correction.
func QRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty QR content", core.ErrInvalidArgument)
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}
	return png, nil
}

// SelectStatuses validates a requested status selection. Duplicates are
// collapsed, order is kept.
func SelectStatuses(keys []string) ([]core.QRStatus, error) {
	out := make([]core.QRStatus, 0, len(keys))
	seen := map[core.QRStatus]bool{}
	for _, k := range keys {
		s := core.QRStatus(strings.TrimSpace(k))
		if s == "" {
			continue
		}
		if !s.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, k)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) > MaxStatuses {
		return nil, ErrTooManyStatuses
	}
	return out, nil
}
