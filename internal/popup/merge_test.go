package popup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func item(id string, liked bool, age time.Duration) Testimonial {
	return Testimonial{
		ID:             id,
		IsLiked:        liked,
		CreatedAt:      baseTime.Add(-age),
		RespondentName: "Name " + id,
	}
}

func ids(items []Testimonial) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.ID)
	}
	return out
}

func TestMergeFiltersLikedAndSortsNewestFirst(t *testing.T) {
	fetched := []Testimonial{
		item("old", true, 3*time.Hour),
		item("hidden", false, 0),
		item("new", true, time.Minute),
		item("mid", true, time.Hour),
	}

	got := Merge(State{}, fetched, true)

	assert.Equal(t, []string{"new", "mid", "old"}, ids(got.Queue))
	assert.Equal(t, "new", got.LastNewestID)
	assert.Nil(t, got.Priority)
}

func TestMergeStableForEqualTimestamps(t *testing.T) {
	fetched := []Testimonial{
		item("first", true, time.Hour),
		item("second", true, time.Hour),
		item("third", true, time.Hour),
	}

	got := Merge(State{}, fetched, true)
	assert.Equal(t, []string{"first", "second", "third"}, ids(got.Queue))
}

func TestMergeFirstLoadNeverSetsPriority(t *testing.T) {
	prev := State{LastNewestID: "something-else"}
	got := Merge(prev, []Testimonial{item("a", true, 0)}, true)
	assert.Nil(t, got.Priority)
	assert.Equal(t, "a", got.LastNewestID)
}

func TestMergeLiveUpdateFlagsNewestAsPriority(t *testing.T) {
	first := Merge(State{}, []Testimonial{item("a", true, time.Hour), item("b", true, 2*time.Hour)}, true)
	require.Equal(t, []string{"a", "b"}, ids(first.Queue))
	require.Nil(t, first.Priority)

	second := Merge(first, []Testimonial{
		item("a", true, time.Hour),
		item("b", true, 2*time.Hour),
		item("c", true, time.Minute),
	}, false)

	require.NotNil(t, second.Priority)
	assert.Equal(t, "c", second.Priority.ID)
	assert.Equal(t, "c", second.LastNewestID)
	assert.Equal(t, []string{"c", "a", "b"}, ids(second.Queue))
}

func TestMergeSameNewestKeepsPriorityUntouched(t *testing.T) {
	pending := item("c", true, 0)
	prev := State{LastNewestID: "c", Priority: &pending}

	got := Merge(prev, []Testimonial{item("c", true, 0), item("a", true, time.Hour)}, false)
	require.NotNil(t, got.Priority)
	assert.Equal(t, "c", got.Priority.ID)

	none := Merge(State{LastNewestID: "c"}, []Testimonial{item("c", true, 0)}, false)
	assert.Nil(t, none.Priority)
}

func TestMergeWithoutPreviousNewestDoesNotFlag(t *testing.T) {
	got := Merge(State{}, []Testimonial{item("a", true, 0)}, false)
	assert.Nil(t, got.Priority)
	assert.Equal(t, "a", got.LastNewestID)
}

func TestMergeEmptyResultReplacesQueueOnly(t *testing.T) {
	pending := item("c", true, 0)
	prev := State{
		Queue:        []Testimonial{item("c", true, 0), item("a", true, time.Hour)},
		LastNewestID: "c",
		Priority:     &pending,
		Index:        1,
	}

	got := Merge(prev, []Testimonial{item("c", false, 0)}, false)

	assert.Empty(t, got.Queue)
	assert.Equal(t, "c", got.LastNewestID)
	require.NotNil(t, got.Priority)
	assert.Equal(t, "c", got.Priority.ID)
	assert.Equal(t, 1, got.Index)
}

func TestMergeNilListChangesNothing(t *testing.T) {
	prev := State{Queue: []Testimonial{item("a", true, 0)}, LastNewestID: "a"}
	got := Merge(prev, nil, false)
	assert.Equal(t, prev, got)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	fetched := []Testimonial{item("old", true, time.Hour), item("new", true, 0)}
	_ = Merge(State{}, fetched, true)
	assert.Equal(t, []string{"old", "new"}, ids(fetched))
}
