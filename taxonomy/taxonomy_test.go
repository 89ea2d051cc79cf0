package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moodtunes/moodtunes-backend/model"
)

func TestMapMoodCategory_FirstMatchWins(t *testing.T) {
	// "blue" belongs to sad (declared 2nd), "excited" to excited (declared
	// 4th). Declaration order decides, not keyword position in the text.
	assert.Equal(t, "sad", MapMoodCategory("excited at first but mostly feeling blue"))
	assert.Equal(t, "sad", MapMoodCategory("feeling blue yet somehow excited"))

	// "calm" is owned by both calm and relaxed. calm is declared earlier.
	assert.Equal(t, "calm", MapMoodCategory("very calm today"))

	// "nervous" is owned by anxious before the nervous category itself.
	assert.Equal(t, "anxious", MapMoodCategory("nervous about tomorrow"))
}

func TestMapMoodCategory_CaseInsensitiveSubstring(t *testing.T) {
	assert.Equal(t, "happy", MapMoodCategory("SO HAPPY RIGHT NOW"))
	assert.Equal(t, "grateful", MapMoodCategory("unGRATEFUL weather, grateful heart"))
}

func TestMapMoodCategory_Fallback(t *testing.T) {
	assert.Equal(t, FallbackCategory, MapMoodCategory(""))
	assert.Equal(t, FallbackCategory, MapMoodCategory("zzqxnonsense"))
}

func TestMapGenreCategory(t *testing.T) {
	assert.Equal(t, "rock", MapGenreCategory("Classic Rock"))
	assert.Equal(t, "hiphop", MapGenreCategory("Lofi Hip Hop"))
	// "fusion" is owned by jazz before mixed.
	assert.Equal(t, "jazz", MapGenreCategory("jazz fusion"))
	assert.Equal(t, FallbackCategory, MapGenreCategory(""))
	assert.Equal(t, FallbackCategory, MapGenreCategory("yodeling"))
}

func TestKnownMoodCategory(t *testing.T) {
	assert.True(t, KnownMoodCategory("happy"))
	assert.True(t, KnownMoodCategory(FallbackCategory))
	assert.False(t, KnownMoodCategory("bored"))
}

func TestEntriesMatchingCategory(t *testing.T) {
	entries := []*model.MoodEntry{
		{Id: "1", MoodAnalysis: "joyful and content"},
		{Id: "2", MoodAnalysis: "worried sick"},
		{Id: "3", MoodAnalysis: "a strange unreadable state"},
		{Id: "4", MoodAnalysis: "mixed feelings all around"},
	}

	happy := EntriesMatchingCategory(entries, "happy")
	assert.Len(t, happy, 1)
	assert.Equal(t, "1", happy[0].Id)

	anxious := EntriesMatchingCategory(entries, "anxious")
	assert.Len(t, anxious, 1)
	assert.Equal(t, "2", anxious[0].Id)

	// The fallback bucket selects entries matching none of the named
	// categories' keywords. Entry 4 says "mixed" but that is not a mood
	// keyword, so it lands in the fallback bucket together with entry 3.
	mixed := EntriesMatchingCategory(entries, FallbackCategory)
	assert.Len(t, mixed, 2)
	assert.Equal(t, "3", mixed[0].Id)
	assert.Equal(t, "4", mixed[1].Id)

	unknown := EntriesMatchingCategory(entries, "bored")
	assert.Empty(t, unknown)
}
