package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/pkg/contracts/domain"
	"ecomcli/pkg/contracts/events"
)

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []events.RunSnapshot
}

func (p *recordingPublisher) PublishRun(_ context.Context, s events.RunSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, s)
}

func (p *recordingPublisher) all() []events.RunSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.RunSnapshot(nil), p.snapshots...)
}

func stageStatuses(s events.RunSnapshot) map[string]string {
	out := make(map[string]string, len(s.Stages))
	for _, st := range s.Stages {
		out[st.Name] = st.Status
	}
	return out
}

func TestRunPublishesProgress(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, "").WithPublisher(pub)

	result, err := svc.RunDataset(context.Background(), sampleDataset(), RunRequest{})
	require.NoError(t, err)

	snaps := pub.all()
	// start, begin+end for each of four stages, finish
	require.Len(t, snaps, 10)

	first := snaps[0]
	assert.Equal(t, result.Report.RunID, first.RunID)
	assert.Equal(t, events.StatusRunning, first.Status)
	assert.Equal(t, 0, first.Progress)
	for _, status := range stageStatuses(first) {
		assert.Equal(t, events.StatusPending, status)
	}

	last := snaps[len(snaps)-1]
	assert.Equal(t, events.StatusCompleted, last.Status)
	assert.Equal(t, 100, last.Progress)
	assert.Empty(t, last.CurrentStage)
	require.NotNil(t, last.CompletedAt)
	assert.Equal(t, map[string]string{
		StageLoad:            events.StatusCompleted,
		StageFacts:           events.StatusCompleted,
		StageMetricsCurrent:  events.StatusCompleted,
		StageMetricsPrevious: events.StatusCompleted,
	}, stageStatuses(last))

	for i := 1; i < len(snaps); i++ {
		assert.GreaterOrEqual(t, snaps[i].Progress, snaps[i-1].Progress)
	}
}

func TestRunPublishesFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, t.TempDir()).WithPublisher(pub)

	_, err := svc.Run(context.Background(), RunRequest{})
	require.Error(t, err)

	snaps := pub.all()
	require.Len(t, snaps, 4)

	last := snaps[len(snaps)-1]
	assert.Equal(t, events.StatusFailed, last.Status)
	assert.NotEmpty(t, last.Error)
	assert.Equal(t, 0, last.Progress)

	statuses := stageStatuses(last)
	assert.Equal(t, events.StatusFailed, statuses[StageLoad])
	assert.Equal(t, events.StatusPending, statuses[StageFacts])
}

func TestRunInvalidRequestPublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, "").WithPublisher(pub)

	bad := domain.NewPeriod(2023, 0, 2023, 12)
	_, err := svc.RunDataset(context.Background(), sampleDataset(), RunRequest{Current: &bad})
	require.Error(t, err)
	assert.Empty(t, pub.all())
}

func TestSnapshotsAreCopies(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, "").WithPublisher(pub)

	_, err := svc.RunDataset(context.Background(), sampleDataset(), RunRequest{})
	require.NoError(t, err)

	snaps := pub.all()
	assert.Equal(t, events.StatusPending, stageStatuses(snaps[0])[StageLoad])
	assert.Equal(t, events.StatusRunning, stageStatuses(snaps[1])[StageLoad])
}
