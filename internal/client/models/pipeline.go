package models

// AnalysisMode selects what the pipeline service returns.
type AnalysisMode string

const (
	ModeCharacteristics AnalysisMode = "characteristics"
	ModePipeline        AnalysisMode = "pipeline"
)

// AnalysisRequest is the body accepted by the pipeline service.
type AnalysisRequest struct {
	RTSPURL      string       `json:"rtsp_url"`
	Mode         AnalysisMode `json:"mode"`
	CaptureFrame bool         `json:"capture_frame"`
}

// StreamCharacteristics describes a probed RTSP stream.
type StreamCharacteristics struct {
	Codec      string  `json:"codec,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Framerate  float64 `json:"framerate,omitempty"`
	Bitrate    int64   `json:"bitrate,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
}

// AnalysisResult is the pipeline service response. Characteristics is set in
// characteristics mode, Command in pipeline mode.
type AnalysisResult struct {
	Characteristics *StreamCharacteristics `json:"characteristics,omitempty"`
	Command         string                 `json:"command,omitempty"`
	Frame           string                 `json:"frame,omitempty"`
	Message         string                 `json:"message,omitempty"`
}
