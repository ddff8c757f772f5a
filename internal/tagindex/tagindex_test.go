package tagindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex_SetAndLookup(t *testing.T) {
	x := New()
	x.Set("a", []string{"workouts", "user:1"})
	x.Set("b", []string{"workouts"})
	x.Set("c", []string{"prs"})

	assert.ElementsMatch(t, []string{"a", "b"}, x.KeysForTags([]string{"workouts"}))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, x.KeysForTags([]string{"workouts", "prs"}))
	assert.Empty(t, x.KeysForTags([]string{"unknown"}))
}

func TestIndex_SetReplacesTags(t *testing.T) {
	x := New()
	x.Set("a", []string{"old"})
	x.Set("a", []string{"new"})

	assert.Empty(t, x.KeysForTags([]string{"old"}))
	assert.ElementsMatch(t, []string{"a"}, x.KeysForTags([]string{"new"}))
}

func TestIndex_Remove(t *testing.T) {
	x := New()
	x.Set("a", []string{"g"})
	x.Set("b", []string{"g"})

	x.Remove("a")
	x.Remove("a") // idempotent
	assert.ElementsMatch(t, []string{"b"}, x.KeysForTags([]string{"g"}))

	x.Clear()
	assert.Empty(t, x.KeysForTags([]string{"g"}))
}
