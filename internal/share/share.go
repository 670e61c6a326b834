// Package share builds the artifacts an owner distributes to collect and
// display testimonials: the public submission link, the widget embed
// snippet, and a QR code of the submission link.
package share

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Kit renders share artifacts for a deployment.
type Kit struct {
	publicBase string
	apiBase    string
	size       int
	level      qrcode.RecoveryLevel
}

// NewKit returns a Kit rooted at publicBaseURL (scheme + host, no trailing
// slash needed). apiBasePath is the mount point of the JSON API. qrSize is
// the PNG edge in pixels; recovery is one of L, M, Q, H (default M).
func NewKit(publicBaseURL, apiBasePath string, qrSize int, recovery string) *Kit {
	if qrSize <= 0 {
		qrSize = 256
	}
	apiBase := strings.TrimRight(apiBasePath, "/")
	if apiBase != "" && !strings.HasPrefix(apiBase, "/") {
		apiBase = "/" + apiBase
	}
	return &Kit{
		publicBase: strings.TrimRight(publicBaseURL, "/"),
		apiBase:    apiBase,
		size:       qrSize,
		level:      RecoveryLevel(recovery),
	}
}

// RecoveryLevel maps a letter grade onto a QR error correction level.
func RecoveryLevel(s string) qrcode.RecoveryLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// SubmitLink is the public form URL visitors use to leave a testimonial.
func (k *Kit) SubmitLink(ownerID string) string {
	return k.publicBase + "/submit/" + url.PathEscape(ownerID)
}

// WidgetURL is the URL of the embeddable script.
func (k *Kit) WidgetURL() string {
	return k.publicBase + "/widget.js"
}

// FeedURL is the public JSON feed the widget renders.
func (k *Kit) FeedURL(ownerID string) string {
	return k.publicBase + k.apiBase + "/public/" + url.PathEscape(ownerID) + "/testimonials"
}

// EmbedCode is the HTML snippet an owner pastes into their site.
func (k *Kit) EmbedCode(ownerID string) string {
	return fmt.Sprintf(`<script src="%s" data-user-id="%s" async defer></script>`,
		html.EscapeString(k.WidgetURL()), html.EscapeString(ownerID))
}

// SubmitQR renders the submission link as a PNG QR code.
func (k *Kit) SubmitQR(ownerID string) ([]byte, error) {
	code, err := qrcode.New(k.SubmitLink(ownerID), k.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := code.PNG(k.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}
