package recommender

import (
	"context"
	"fmt"
	"strings"

	"github.com/moodtunes/moodtunes-backend/model"
	"github.com/moodtunes/moodtunes-backend/taxonomy"
	"github.com/moodtunes/moodtunes-backend/utils"
	log "github.com/moodtunes/moodtunes-backend/utils/log"
)

// Literal defaults used when neither the catalog nor the inference stage
// produced a field.
const (
	DefaultTitle        = "Unknown Title"
	DefaultArtist       = "Unknown Artist"
	DefaultGenre        = "Unknown Genre"
	DefaultExternalLink = "#"
)

// InferenceResult is the structured payload the language-inference
// collaborator is asked to produce.
type InferenceResult struct {
	Mood               string `json:"mood"`
	SongRecommendation struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
		Genre  string `json:"genre"`
	} `json:"songRecommendation"`
}

// Track is a catalog-search match. The catalog does not reliably return
// genre, which is why merge never takes genre from it.
type Track struct {
	Title        string
	Artist       string
	ExternalLink string
	PreviewLink  *string
}

// InferenceClient is the language-inference collaborator. It must be
// invoked with non-zero sampling randomness so repeated calls on identical
// input vary; implementations and callers never cache results by input.
type InferenceClient interface {
	Infer(ctx context.Context, journalText string) (*InferenceResult, error)
}

// CatalogClient is the catalog-search collaborator. A nil track with a nil
// error is a valid "no match" response.
type CatalogClient interface {
	SearchTrack(ctx context.Context, title string, artist string) (*Track, error)
}

// Recommendation is the finalized analyze output.
type Recommendation struct {
	Category string     `json:"category"`
	Mood     string     `json:"mood"`
	Song     model.Song `json:"song"`
}

// Orchestrator chains inference, parsing, catalog enrichment and merge into
// a single analyze pipeline. The two external calls are sequential because
// enrichment depends on inference output.
type Orchestrator struct {
	inference InferenceClient
	catalog   CatalogClient
}

func NewOrchestrator(inference InferenceClient, catalog CatalogClient) *Orchestrator {
	return &Orchestrator{inference: inference, catalog: catalog}
}

// Analyze turns raw journal text into a mood category and a suggested song.
// Inference failures (transport or parse) are fatal. Enrichment failures are
// logged and absorbed: the result is then built from inference fields plus
// literal defaults. Every invocation is a fresh attempt, prior output is
// never reused.
func (o *Orchestrator) Analyze(ctx context.Context, journalText string) (*Recommendation, error) {
	if strings.TrimSpace(journalText) == "" {
		return nil, &utils.ValidationError{Field: "journalText", Reason: "must not be empty"}
	}

	inferred, err := o.inference.Infer(ctx, journalText)
	if err != nil {
		return nil, err
	}

	track, err := o.catalog.SearchTrack(ctx, inferred.SongRecommendation.Title, inferred.SongRecommendation.Artist)
	if err != nil {
		log.Logger.Warn(fmt.Sprintf("catalog enrichment failed, falling back to inference fields: %v", err))
		track = nil
	}

	return &Recommendation{
		Category: taxonomy.MapMoodCategory(inferred.Mood),
		Mood:     inferred.Mood,
		Song:     mergeSong(inferred, track),
	}, nil
}

// mergeSong applies the per-field precedence: catalog over inference over
// the literal default. Genre is the exception, inference always wins there
// because the catalog collaborator does not return genre reliably.
func mergeSong(inferred *InferenceResult, track *Track) model.Song {
	song := model.Song{
		Title:        inferred.SongRecommendation.Title,
		Artist:       inferred.SongRecommendation.Artist,
		Genre:        inferred.SongRecommendation.Genre,
		ExternalLink: DefaultExternalLink,
	}
	if track != nil {
		if track.Title != "" {
			song.Title = track.Title
		}
		if track.Artist != "" {
			song.Artist = track.Artist
		}
		if track.ExternalLink != "" {
			song.ExternalLink = track.ExternalLink
		}
		song.PreviewLink = track.PreviewLink
	}
	if song.Title == "" {
		song.Title = DefaultTitle
	}
	if song.Artist == "" {
		song.Artist = DefaultArtist
	}
	if song.Genre == "" {
		song.Genre = DefaultGenre
	}
	return song
}
