package speech

import (
	"context"
	"io"
)

// SpeakerTurn is one diarization interval: who spoke, from when to when.
// Times are seconds from the start of the recording.
type SpeakerTurn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// TranscriptSegment is one timestamped stretch of recognized text.
// Confidence is nil when the provider reports none.
type TranscriptSegment struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// TranscriptionResult is the full output of a speech-to-text pass
type TranscriptionResult struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// Transcriber converts speech audio into timestamped text segments
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*TranscriptionResult, error)
}

// Diarizer partitions an audio timeline into speaker-labelled intervals
type Diarizer interface {
	Diarize(ctx context.Context, audio io.Reader, filename string) ([]SpeakerTurn, error)
}
