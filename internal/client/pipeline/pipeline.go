// Package pipeline calls the remote service that probes an RTSP stream and
// generates a GStreamer pipeline for it.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
)

var ErrInvalidMode = errors.New("mode must be characteristics or pipeline")

// Doer is the part of netx.Client the pipeline client needs.
type Doer interface {
	Post(ctx context.Context, path string, in, out any) error
}

type Client struct {
	api Doer
}

func NewClient(api Doer) *Client {
	return &Client{api: api}
}

// Analyze validates the request locally and submits it.
func (c *Client) Analyze(ctx context.Context, rtspURL string, mode models.AnalysisMode, captureFrame bool) (*models.AnalysisResult, error) {
	if err := models.ValidateRTSPURL(rtspURL); err != nil {
		return nil, err
	}
	if mode != models.ModeCharacteristics && mode != models.ModePipeline {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	req := models.AnalysisRequest{RTSPURL: rtspURL, Mode: mode, CaptureFrame: captureFrame}
	var res models.AnalysisResult
	if err := c.api.Post(ctx, "analyze", req, &res); err != nil {
		return nil, fmt.Errorf("analyze stream: %w", err)
	}
	return &res, nil
}
