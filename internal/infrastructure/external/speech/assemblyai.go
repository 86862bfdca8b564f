package speech

import (
	"context"
	"fmt"
	"io"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/audiolab-dev/audioscribe/pkg/config"
)

// AssemblyAIDiarizer implements Diarizer using AssemblyAI speaker labels.
// The audio is uploaded, transcribed with speaker_labels enabled, and the
// resulting utterances are mapped onto speaker turns.
type AssemblyAIDiarizer struct {
	client *aai.Client
}

// NewAssemblyAIDiarizer creates an AssemblyAI-backed diarizer
func NewAssemblyAIDiarizer(cfg *config.SpeechConfig) *AssemblyAIDiarizer {
	return &AssemblyAIDiarizer{
		client: aai.NewClient(cfg.AssemblyAIAPIKey),
	}
}

// Diarize uploads the audio and blocks until AssemblyAI finishes processing.
// Utterance timestamps arrive in milliseconds and are converted to seconds.
func (d *AssemblyAIDiarizer) Diarize(ctx context.Context, audio io.Reader, filename string) ([]SpeakerTurn, error) {
	uploadURL, err := d.client.Upload(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to assemblyai: %w", filename, err)
	}

	transcript, err := d.client.Transcripts.TranscribeFromURL(ctx, uploadURL, &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit diarization: %w", err)
	}
	if transcript.ID == nil {
		return nil, fmt.Errorf("assemblyai returned no transcript id")
	}

	transcript, err = d.client.Transcripts.Wait(ctx, *transcript.ID)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for diarization: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		errMsg := "unknown error"
		if transcript.Error != nil {
			errMsg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai diarization failed: %s", errMsg)
	}

	turns := make([]SpeakerTurn, 0, len(transcript.Utterances))
	for _, u := range transcript.Utterances {
		turn := SpeakerTurn{}
		if u.Speaker != nil {
			turn.Speaker = *u.Speaker
		}
		if u.Start != nil {
			turn.Start = float64(*u.Start) / 1000.0
		}
		if u.End != nil {
			turn.End = float64(*u.End) / 1000.0
		}
		turns = append(turns, turn)
	}

	return turns, nil
}
