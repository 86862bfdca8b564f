package transcription

import (
	"strings"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/external/speech"
)

// Combine merges transcription segments into diarization intervals. A text
// segment is attributed to a speaker turn only when it lies fully inside the
// turn (segment.Start >= turn.Start and segment.End <= turn.End); segments
// straddling a turn boundary are dropped. The output preserves the diarizer's
// interval order, one entry per turn, including turns with no matching text.
func Combine(turns []speech.SpeakerTurn, segments []speech.TranscriptSegment) entities.SpeakerSegments {
	combined := make(entities.SpeakerSegments, 0, len(turns))

	for _, turn := range turns {
		var parts []string
		for _, seg := range segments {
			if seg.Start >= turn.Start && seg.End <= turn.End {
				parts = append(parts, seg.Text)
			}
		}

		combined = append(combined, entities.SpeakerSegment{
			Speaker:   turn.Speaker,
			StartTime: turn.Start,
			EndTime:   turn.End,
			Text:      strings.TrimSpace(strings.Join(parts, " ")),
		})
	}

	return combined
}

// WordCount sums whitespace-separated tokens across all combined segments
func WordCount(segments entities.SpeakerSegments) int {
	count := 0
	for _, seg := range segments {
		count += len(strings.Fields(seg.Text))
	}
	return count
}

// ConfidenceScore averages per-segment confidences from the transcriber.
// A segment without a reported confidence contributes zero; an empty segment
// list scores zero.
func ConfidenceScore(segments []speech.TranscriptSegment) float64 {
	if len(segments) == 0 {
		return 0
	}

	total := 0.0
	for _, seg := range segments {
		if seg.Confidence != nil {
			total += *seg.Confidence
		}
	}
	return total / float64(len(segments))
}
