package speech

import (
	"context"
	"fmt"
	"io"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/audiolab-dev/audioscribe/pkg/config"
)

// WhisperTranscriber implements Transcriber using the OpenAI Whisper API.
// Construct once at startup and share; the client is safe for concurrent use.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a Whisper-backed transcriber
func NewWhisperTranscriber(cfg *config.SpeechConfig) *WhisperTranscriber {
	model := cfg.WhisperModel
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client: openai.NewClient(cfg.OpenAIAPIKey),
		model:  model,
	}
}

// Transcribe runs speech-to-text and maps verbose-JSON segments onto
// TranscriptSegments. Whisper reports avg_logprob per segment rather than a
// confidence; exp(avg_logprob) clamped to [0,1] is used as the confidence.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*TranscriptionResult, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   audio,
		FilePath: filename,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	result := &TranscriptionResult{
		Text:     resp.Text,
		Segments: make([]TranscriptSegment, 0, len(resp.Segments)),
	}
	for _, seg := range resp.Segments {
		confidence := math.Exp(seg.AvgLogprob)
		if confidence > 1 {
			confidence = 1
		}
		result.Segments = append(result.Segments, TranscriptSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Confidence: &confidence,
		})
	}

	return result, nil
}
