package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"truthlens/internal/domain/entity"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
	"truthlens/internal/usecase/ai"
)

const (
	stubManipulationScore = 15
	suspiciousThreshold   = 30
)

// MediaRequest names the media to inspect.
type MediaRequest struct {
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
	Text      string `json:"text"`
}

// MediaMetadata is the forensic metadata block.
type MediaMetadata struct {
	HasEXIF              bool   `json:"has_exif"`
	ReverseSearchMatches int    `json:"reverse_search_matches"`
	CompressionArtifacts string `json:"compression_artifacts"`
}

// MediaResult is the media forensics answer. The manipulation score is fixed;
// Description is filled when the model could look at the image.
type MediaResult struct {
	MediaURL          string        `json:"media_url"`
	MediaType         string        `json:"media_type"`
	ManipulationScore int           `json:"manipulation_score"`
	Authenticity      string        `json:"authenticity"`
	Findings          string        `json:"findings"`
	Metadata          MediaMetadata `json:"metadata"`
	Description       string        `json:"description,omitempty"`
	Method            string        `json:"method"`
}

// Media methods.
const (
	MethodStub           = "stub"
	MethodStubWithVision = "stub_with_vision"
)

// MediaForensicsAgent reports a fixed low manipulation score. When the model
// is enabled it adds a vision description of the image.
type MediaForensicsAgent struct {
	llm      LLM
	images   ImageLoader
	checkURL func(string) error
}

// NewMediaForensicsAgent creates the agent. images may be nil, which skips
// the vision description.
func NewMediaForensicsAgent(llm LLM, images ImageLoader) *MediaForensicsAgent {
	return &MediaForensicsAgent{llm: llm, images: images, checkURL: entity.ValidateURL}
}

// Inspect never fails; an empty MediaURL yields the plain stub result.
func (a *MediaForensicsAgent) Inspect(ctx context.Context, req MediaRequest) (*MediaResult, error) {
	ctx, span := tracing.StartSpan(ctx, "agent.media_forensics")
	defer span.End()
	defer metrics.RecordAgentRequest("media_forensics", true)

	mediaType := strings.ToLower(strings.TrimSpace(req.MediaType))
	if mediaType == "" {
		mediaType = "image"
	}

	res := &MediaResult{
		MediaURL:          req.MediaURL,
		MediaType:         mediaType,
		ManipulationScore: stubManipulationScore,
		Authenticity:      authenticity(stubManipulationScore),
		Findings:          "No obvious signs of manipulation detected",
		Metadata: MediaMetadata{
			HasEXIF:              true,
			ReverseSearchMatches: 0,
			CompressionArtifacts: "Normal",
		},
		Method: MethodStub,
	}

	if mediaType != "image" || req.MediaURL == "" || a.images == nil || !llmEnabled(a.llm) {
		return res, nil
	}

	desc, err := a.describe(ctx, req.MediaURL, req.Text)
	if err != nil {
		logging.FromContext(ctx).Warn("image description unavailable",
			"media_url", req.MediaURL,
			"error", err)
		metrics.RecordLLMFallback("media_forensics")
		return res, nil
	}
	res.Description = desc
	res.Method = MethodStubWithVision
	return res, nil
}

func (a *MediaForensicsAgent) describe(ctx context.Context, mediaURL, text string) (string, error) {
	if err := a.checkURL(mediaURL); err != nil {
		return "", err
	}
	data, err := a.images.Get(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is %s, not an image", mediaURL, mime)
	}

	img := ai.Image{Data: data, MIMEType: mime}
	return a.llm.DescribeImage(ctx, img, imagePrompt(text))
}

func imagePrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze this image for authenticity and manipulation.\n\n")
	if text != "" {
		b.WriteString("Context: " + text + "\n\n")
	}
	b.WriteString(`Tasks:
1. Describe what you see in the image
2. Check for signs of manipulation or editing
3. Identify any red flags`)
	return b.String()
}

func authenticity(score int) string {
	if score < suspiciousThreshold {
		return "Likely Authentic"
	}
	return "Suspicious"
}
