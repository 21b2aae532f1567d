package businessflow

import (
	"context"
	"testing"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEventType(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"view", models.EventTypeView, true},
		{"save", models.EventTypeEpisodeSave, true},
		{"episode_save", models.EventTypeEpisodeSave, true},
		{"follow", models.EventTypeShowFollow, true},
		{"show_follow", models.EventTypeShowFollow, true},
		{"  VIEW ", models.EventTypeView, true},
		{"Save", models.EventTypeEpisodeSave, true},
		{"like", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeEventType(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestEventFlowRecord(t *testing.T) {
	showID := int64(42)

	t.Run("RequiresRegion", func(t *testing.T) {
		flow := NewEventFlow(&fakeEventRepo{})
		err := flow.Record(context.Background(), RecordEventInput{EventType: "view", ShowID: &showID})
		assert.True(t, IsInvalidRegion(err))
	})

	t.Run("RejectsUnknownType", func(t *testing.T) {
		flow := NewEventFlow(&fakeEventRepo{})
		err := flow.Record(context.Background(), RecordEventInput{Region: "US", EventType: "like", ShowID: &showID})
		assert.True(t, IsInvalidEventType(err))
	})

	t.Run("AcceptsEventWithoutTarget", func(t *testing.T) {
		// Incomplete events are stored as-is; the scorer skips them
		repo := &fakeEventRepo{}
		flow := NewEventFlow(repo)
		err := flow.Record(context.Background(), RecordEventInput{Region: "US", EventType: "view"})
		require.NoError(t, err)
		require.Len(t, repo.events, 1)
		assert.Nil(t, repo.events[0].ShowID)
		assert.Nil(t, repo.events[0].EpisodeID)
	})

	t.Run("NormalizesBeforeSave", func(t *testing.T) {
		repo := &fakeEventRepo{}
		flow := NewEventFlow(repo)
		err := flow.Record(context.Background(), RecordEventInput{Region: "us", EventType: "follow", ShowID: &showID})
		require.NoError(t, err)
		require.Len(t, repo.events, 1)
		assert.Equal(t, "US", repo.events[0].Region)
		assert.Equal(t, models.EventTypeShowFollow, repo.events[0].EventType)
		assert.Equal(t, showID, *repo.events[0].ShowID)
	})
}
