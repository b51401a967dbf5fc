package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Camera is one camera configuration record managed through the camera API
// and cached locally for offline listing.
type Camera struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RTSPURL   string    `json:"rtsp_url"`
	Pipeline  string    `json:"pipeline,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields the camera API requires.
func (c *Camera) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCamera)
	}
	return ValidateRTSPURL(c.RTSPURL)
}

// ValidateRTSPURL accepts rtsp:// and rtsps:// URLs with a host.
func ValidateRTSPURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCamera, err)
	}
	if u.Scheme != "rtsp" && u.Scheme != "rtsps" {
		return fmt.Errorf("%w: rtsp url must start with rtsp:// or rtsps://", ErrInvalidCamera)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: rtsp url has no host", ErrInvalidCamera)
	}
	return nil
}
