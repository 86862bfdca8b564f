package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiolab-dev/audioscribe/internal/domain/entities"
	"github.com/audiolab-dev/audioscribe/internal/infrastructure/external/speech"
)

func confPtr(v float64) *float64 { return &v }

func TestCombine_ContainedSegmentsJoined(t *testing.T) {
	turns := []speech.SpeakerTurn{
		{Speaker: "A", Start: 0, End: 10},
		{Speaker: "B", Start: 10, End: 20},
	}
	segments := []speech.TranscriptSegment{
		{Start: 0, End: 3, Text: " hello "},
		{Start: 4, End: 9, Text: "world"},
		{Start: 11, End: 19, Text: "goodbye"},
	}

	combined := Combine(turns, segments)
	require.Len(t, combined, 2)

	assert.Equal(t, "A", combined[0].Speaker)
	assert.Equal(t, "hello  world", combined[0].Text)
	assert.Equal(t, "B", combined[1].Speaker)
	assert.Equal(t, "goodbye", combined[1].Text)
}

func TestCombine_StraddlingSegmentDropped(t *testing.T) {
	turns := []speech.SpeakerTurn{
		{Speaker: "A", Start: 0, End: 10},
		{Speaker: "B", Start: 10, End: 20},
	}
	// Crosses the boundary between the two turns: attributed to neither.
	segments := []speech.TranscriptSegment{
		{Start: 8, End: 12, Text: "split"},
	}

	combined := Combine(turns, segments)
	require.Len(t, combined, 2)
	assert.Empty(t, combined[0].Text)
	assert.Empty(t, combined[1].Text)
}

func TestCombine_BoundaryInclusive(t *testing.T) {
	turns := []speech.SpeakerTurn{{Speaker: "A", Start: 2, End: 8}}
	segments := []speech.TranscriptSegment{
		{Start: 2, End: 8, Text: "exact fit"},
	}

	combined := Combine(turns, segments)
	require.Len(t, combined, 1)
	assert.Equal(t, "exact fit", combined[0].Text)
}

func TestCombine_PreservesTurnOrder(t *testing.T) {
	// Diarizer output is not re-sorted, even when out of chronological order.
	turns := []speech.SpeakerTurn{
		{Speaker: "B", Start: 10, End: 20},
		{Speaker: "A", Start: 0, End: 10},
	}

	combined := Combine(turns, nil)
	require.Len(t, combined, 2)
	assert.Equal(t, "B", combined[0].Speaker)
	assert.Equal(t, "A", combined[1].Speaker)
}

func TestCombine_EmptyInputs(t *testing.T) {
	assert.Empty(t, Combine(nil, nil))

	combined := Combine(nil, []speech.TranscriptSegment{{Start: 0, End: 1, Text: "orphan"}})
	assert.Empty(t, combined)

	combined = Combine([]speech.SpeakerTurn{{Speaker: "A", Start: 0, End: 5}}, nil)
	require.Len(t, combined, 1)
	assert.Empty(t, combined[0].Text)
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name     string
		segments entities.SpeakerSegments
		want     int
	}{
		{"empty", nil, 0},
		{"single word", entities.SpeakerSegments{{Text: "test"}}, 1},
		{"multiple segments", entities.SpeakerSegments{
			{Text: "hello world"},
			{Text: "one two three"},
		}, 5},
		{"empty text segment", entities.SpeakerSegments{{Text: ""}, {Text: "a"}}, 1},
		{"extra whitespace", entities.SpeakerSegments{{Text: "  a   b  "}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WordCount(tt.segments))
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name     string
		segments []speech.TranscriptSegment
		want     float64
	}{
		{"empty list", nil, 0},
		{"single", []speech.TranscriptSegment{{Confidence: confPtr(0.9)}}, 0.9},
		{"mean", []speech.TranscriptSegment{
			{Confidence: confPtr(0.8)},
			{Confidence: confPtr(0.6)},
		}, 0.7},
		{"missing counts as zero", []speech.TranscriptSegment{
			{Confidence: confPtr(1.0)},
			{Confidence: nil},
		}, 0.5},
		{"all missing", []speech.TranscriptSegment{{}, {}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConfidenceScore(tt.segments), 1e-9)
		})
	}
}
