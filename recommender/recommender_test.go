package recommender

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moodtunes/moodtunes-backend/utils"
)

type fakeInference struct {
	result *InferenceResult
	err    error
	calls  int
}

func (f *fakeInference) Infer(ctx context.Context, journalText string) (*InferenceResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCatalog struct {
	track *Track
	err   error
	calls int
}

func (f *fakeCatalog) SearchTrack(ctx context.Context, title string, artist string) (*Track, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.track, nil
}

func inferenceResult(mood, title, artist, genre string) *InferenceResult {
	result := &InferenceResult{Mood: mood}
	result.SongRecommendation.Title = title
	result.SongRecommendation.Artist = artist
	result.SongRecommendation.Genre = genre
	return result
}

func TestAnalyze_MergePrecedence(t *testing.T) {
	// Catalog wins on title/artist, inference wins on genre.
	preview := "https://p.scdn.co/mp3-preview/x"
	orchestrator := NewOrchestrator(
		&fakeInference{result: inferenceResult("happy", "A", "B", "Rock")},
		&fakeCatalog{track: &Track{Title: "A2", Artist: "B2", ExternalLink: "https://open.spotify.com/track/x", PreviewLink: &preview}},
	)

	result, err := orchestrator.Analyze(context.Background(), "great day")
	assert.Nil(t, err)
	assert.Equal(t, "happy", result.Category)
	assert.Equal(t, "A2", result.Song.Title)
	assert.Equal(t, "B2", result.Song.Artist)
	assert.Equal(t, "Rock", result.Song.Genre)
	assert.Equal(t, "https://open.spotify.com/track/x", result.Song.ExternalLink)
	assert.Equal(t, &preview, result.Song.PreviewLink)
}

func TestAnalyze_EnrichmentFailureDegrades(t *testing.T) {
	orchestrator := NewOrchestrator(
		&fakeInference{result: inferenceResult("calm and peaceful", "Weightless", "Marconi Union", "")},
		&fakeCatalog{err: &utils.CollaboratorUnavailableError{Collaborator: "catalog", Err: fmt.Errorf("timeout")}},
	)

	result, err := orchestrator.Analyze(context.Background(), "slow morning")
	assert.Nil(t, err)
	assert.Equal(t, "calm", result.Category)
	assert.Equal(t, "Weightless", result.Song.Title)
	assert.Equal(t, "Marconi Union", result.Song.Artist)
	assert.Equal(t, DefaultGenre, result.Song.Genre)
	assert.Equal(t, DefaultExternalLink, result.Song.ExternalLink)
	assert.Nil(t, result.Song.PreviewLink)
}

func TestAnalyze_NoCatalogMatch(t *testing.T) {
	orchestrator := NewOrchestrator(
		&fakeInference{result: inferenceResult("hopeful", "", "", "Indie")},
		&fakeCatalog{track: nil},
	)

	result, err := orchestrator.Analyze(context.Background(), "things are looking up")
	assert.Nil(t, err)
	assert.Equal(t, DefaultTitle, result.Song.Title)
	assert.Equal(t, DefaultArtist, result.Song.Artist)
	assert.Equal(t, "Indie", result.Song.Genre)
	assert.Equal(t, DefaultExternalLink, result.Song.ExternalLink)
}

func TestAnalyze_InferenceFailureIsFatal(t *testing.T) {
	catalog := &fakeCatalog{}
	orchestrator := NewOrchestrator(
		&fakeInference{err: &utils.InferenceParseError{Raw: "not json", Err: fmt.Errorf("bad output")}},
		catalog,
	)

	result, err := orchestrator.Analyze(context.Background(), "whatever")
	assert.Nil(t, result)
	assert.True(t, utils.IsInferenceParse(err))
	// No partial result is synthesized, enrichment never runs.
	assert.Equal(t, 0, catalog.calls)
}

func TestAnalyze_BlankTextRejectedBeforeExternalCalls(t *testing.T) {
	inference := &fakeInference{result: inferenceResult("happy", "A", "B", "Pop")}
	catalog := &fakeCatalog{}
	orchestrator := NewOrchestrator(inference, catalog)

	_, err := orchestrator.Analyze(context.Background(), "   \n\t")
	assert.True(t, utils.IsValidation(err))
	assert.Equal(t, 0, inference.calls)
	assert.Equal(t, 0, catalog.calls)
}

func TestAnalyze_FreshAttemptEveryCall(t *testing.T) {
	inference := &fakeInference{result: inferenceResult("excited", "A", "B", "Pop")}
	orchestrator := NewOrchestrator(inference, &fakeCatalog{})

	_, err := orchestrator.Analyze(context.Background(), "same text")
	assert.Nil(t, err)
	_, err = orchestrator.Analyze(context.Background(), "same text")
	assert.Nil(t, err)
	// No memoization by input text, each call reaches the collaborator.
	assert.Equal(t, 2, inference.calls)
}
