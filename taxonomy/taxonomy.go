package taxonomy

import (
	"strings"

	"github.com/moodtunes/moodtunes-backend/model"
)

/*

taxonomy normalizes free-form mood and genre strings into small closed
category sets.

Matching is first-match-wins over an ordered category list: the first
category owning any keyword that is a case-insensitive substring of the
input wins. Declaration order resolves overlapping keywords ("calm" belongs
to both calm and relaxed) and is therefore part of the contract. Unknown or
empty input always resolves to the reserved fallback category, never an
error.

*/

// Category pairs a name with its ordered keyword list. Categories are
// matched in slice order, so reordering changes classification results.
type Category struct {
	Name     string
	Keywords []string
}

// FallbackCategory is the reserved catch-all bucket for both taxonomies.
const FallbackCategory = "mixed"

// MoodCategories in fixed declaration order.
var MoodCategories = []Category{
	{"happy", []string{"happy", "joyful", "ecstatic", "content", "cheerful", "overjoyed"}},
	{"sad", []string{"sad", "depressed", "heartbroken", "melancholy", "blue"}},
	{"angry", []string{"angry", "mad", "frustrated", "furious", "irritated"}},
	{"excited", []string{"excited", "thrilled", "elated", "ecstatic"}},
	{"calm", []string{"calm", "peaceful", "relaxed", "serene"}},
	{"anxious", []string{"anxious", "nervous", "worried", "stressed"}},
	{"hopeful", []string{"hopeful", "optimistic", "encouraged", "positive"}},
	{"frustrated", []string{"frustrated", "annoyed", "disheartened", "stuck"}},
	{"confident", []string{"confident", "self-assured"}},
	{"tired", []string{"tired", "exhausted", "drained", "weary"}},
	{"lonely", []string{"lonely", "isolated", "alone"}},
	{"grateful", []string{"grateful", "thankful", "appreciative"}},
	{"nervous", []string{"nervous", "anxious", "jittery"}},
	{"relaxed", []string{"relaxed", "calm", "serene"}},
	{"motivated", []string{"motivated", "driven", "determined", "focused"}},
}

// GenreCategories in fixed declaration order.
var GenreCategories = []Category{
	{"blues", []string{"blues", "delta blues", "chicago blues", "soul blues", "electric blues"}},
	{"classical", []string{"classical", "orchestral", "symphony", "baroque", "romantic"}},
	{"country", []string{"country", "bluegrass", "folk", "americana"}},
	{"dance", []string{"dance", "house", "techno", "trance", "dubstep", "edm"}},
	{"electronic", []string{"electronic", "synthwave", "idm", "ambient", "chiptune"}},
	{"funk", []string{"funk", "groove", "disco", "boogie"}},
	{"hiphop", []string{"hip hop", "rap", "trap", "old school hip hop", "lofi hip hop"}},
	{"indie", []string{"indie", "indie rock", "indie pop", "alt rock", "shoegaze"}},
	{"jazz", []string{"jazz", "swing", "bebop", "fusion", "smooth jazz"}},
	{"latin", []string{"latin", "salsa", "reggaeton", "bachata", "bossa nova"}},
	{"metal", []string{"metal", "heavy metal", "death metal", "black metal", "thrash metal"}},
	{"mixed", []string{"varied", "eclectic", "fusion", "mixed"}},
	{"pop", []string{"pop", "dream pop", "synthpop", "k-pop", "bubblegum pop", "electropop"}},
	{"reggae", []string{"reggae", "ska", "dancehall", "roots reggae"}},
	{"rock", []string{"rock", "hard rock", "alternative rock", "punk", "classic rock"}},
	{"soul", []string{"soul", "r&b", "neo soul", "contemporary r&b"}},
}

// MapMoodCategory maps a free-form mood description to a mood category.
func MapMoodCategory(text string) string {
	return firstMatch(MoodCategories, text)
}

// MapGenreCategory maps a free-form genre description to a genre category.
func MapGenreCategory(text string) string {
	return firstMatch(GenreCategories, text)
}

// KnownMoodCategory reports whether name is a mood category or the fallback.
func KnownMoodCategory(name string) bool {
	if name == FallbackCategory {
		return true
	}
	for _, c := range MoodCategories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// EntriesMatchingCategory filters entries whose mood analysis matches the
// given category. The fallback category is the catch-all bucket: it selects
// entries matching none of the named categories' keyword lists, not entries
// containing some "mixed" keyword.
func EntriesMatchingCategory(entries []*model.MoodEntry, category string) []*model.MoodEntry {
	matched := []*model.MoodEntry{}
	if category == FallbackCategory {
		for _, entry := range entries {
			if !matchesAny(MoodCategories, entry.MoodAnalysis) {
				matched = append(matched, entry)
			}
		}
		return matched
	}
	var target *Category
	for i := range MoodCategories {
		if MoodCategories[i].Name == category {
			target = &MoodCategories[i]
			break
		}
	}
	if target == nil {
		return matched
	}
	for _, entry := range entries {
		if matches(*target, entry.MoodAnalysis) {
			matched = append(matched, entry)
		}
	}
	return matched
}

func firstMatch(categories []Category, text string) string {
	lowered := strings.ToLower(text)
	for _, c := range categories {
		if containsAnyKeyword(c, lowered) {
			return c.Name
		}
	}
	return FallbackCategory
}

func matches(c Category, text string) bool {
	return containsAnyKeyword(c, strings.ToLower(text))
}

func matchesAny(categories []Category, text string) bool {
	lowered := strings.ToLower(text)
	for _, c := range categories {
		if containsAnyKeyword(c, lowered) {
			return true
		}
	}
	return false
}

func containsAnyKeyword(c Category, loweredText string) bool {
	for _, keyword := range c.Keywords {
		if strings.Contains(loweredText, keyword) {
			return true
		}
	}
	return false
}
