package scheduler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/buzzreel/buzzreel-api/config"
	"github.com/buzzreel/buzzreel-api/models"
	"github.com/stretchr/testify/assert"
)

type fakeEventPruner struct {
	cutoff time.Time
	pruned int64
}

func (f *fakeEventPruner) Save(ctx context.Context, event *models.InteractionEvent) error {
	return nil
}

func (f *fakeEventPruner) ByRegionWindow(ctx context.Context, region string, from, to time.Time) ([]*models.InteractionEvent, error) {
	return nil, nil
}

func (f *fakeEventPruner) ByFilter(ctx context.Context, filter models.InteractionEventFilter, orderBy string, limit, offset int) ([]*models.InteractionEvent, error) {
	return nil, nil
}

func (f *fakeEventPruner) Count(ctx context.Context, filter models.InteractionEventFilter) (int64, error) {
	return 0, nil
}

func (f *fakeEventPruner) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.pruned, nil
}

type fakePayloadSweeper struct {
	cutoff time.Time
}

func (f *fakePayloadSweeper) Get(ctx context.Context, key string) (*models.CachedPayload, error) {
	return nil, nil
}

func (f *fakePayloadSweeper) Put(ctx context.Context, key, category string, payload json.RawMessage) error {
	return nil
}

func (f *fakePayloadSweeper) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 0, nil
}

type fakeRecomputer struct {
	regions []string
}

func (f *fakeRecomputer) ComputeBuzz(ctx context.Context, region string) (int, error) {
	f.regions = append(f.regions, region)
	return 1, nil
}

func (f *fakeRecomputer) TopBuzz(ctx context.Context, region, entityType string, limit int) ([]*models.BuzzScore, error) {
	return nil, nil
}

func newTestJob(events *fakeEventPruner, payloads *fakePayloadSweeper, buzz *fakeRecomputer) *RetentionJob {
	return &RetentionJob{
		events:   events,
		payloads: payloads,
		buzz:     buzz,
		cfg: config.RetentionConfig{
			Enabled:          true,
			Interval:         time.Hour,
			EventRetention:   72 * time.Hour,
			PayloadRetention: 7 * 24 * time.Hour,
			WarmRegions:      []string{"US", "DE"},
		},
		logger: log.New(io.Discard, "", 0),
		kick:   make(chan struct{}, 1),
	}
}

func TestRetentionRunOnce(t *testing.T) {
	events := &fakeEventPruner{pruned: 3}
	payloads := &fakePayloadSweeper{}
	buzz := &fakeRecomputer{}
	job := newTestJob(events, payloads, buzz)

	before := time.Now().UTC()
	job.runOnce(context.Background())

	// Cutoffs honor the configured retention ages
	assert.WithinDuration(t, before.Add(-72*time.Hour), events.cutoff, 5*time.Second)
	assert.WithinDuration(t, before.Add(-7*24*time.Hour), payloads.cutoff, 5*time.Second)
	assert.Equal(t, []string{"US", "DE"}, buzz.regions)
}

func TestRetentionKick(t *testing.T) {
	job := newTestJob(&fakeEventPruner{}, &fakePayloadSweeper{}, &fakeRecomputer{})

	assert.True(t, job.Kick())
	// Second kick with one already queued is rejected
	assert.False(t, job.Kick())
	<-job.kick
	assert.True(t, job.Kick())
}
