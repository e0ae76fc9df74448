package invite

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const CodeLength = 6

var ErrInvalidCode = errors.New("invite code must be 6 letters or digits")

// NewCode returns a random upper-case code drawn from A-Z and 2-7.
func NewCode() string {
	return rand.Text()[:CodeLength]
}

// Normalize trims and upper-cases a user-typed code and checks its shape.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return "", ErrInvalidCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", ErrInvalidCode
		}
	}
	return code, nil
}

type Invite struct {
	Code         string `json:"code"`
	JoinURL      string `json:"join_url"`
	WatchURL     string `json:"watch_url"`
	QrCodeBase64 string `json:"qr_code_base64"`
}

// Build renders the share links and a PNG QR code of the join link.
func Build(siteURL string, challengeID uuid.UUID, code string) (*Invite, error) {
	base := strings.TrimRight(siteURL, "/")
	joinURL := fmt.Sprintf("%s/join?code=%s", base, url.QueryEscape(code))

	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &Invite{
		Code:         code,
		JoinURL:      joinURL,
		WatchURL:     fmt.Sprintf("%s/watch/%s", base, challengeID),
		QrCodeBase64: base64.StdEncoding.EncodeToString(png),
	}, nil
}
