package services

import (
	"context"
	"sync"
	"time"

	"ecomcli/pkg/contracts/events"
)

// Pipeline stage names, in execution order
const (
	StageLoad            = "load"
	StageFacts           = "facts"
	StageMetricsCurrent  = "metrics.current"
	StageMetricsPrevious = "metrics.previous"
)

var pipelineStages = []string{StageLoad, StageFacts, StageMetricsCurrent, StageMetricsPrevious}

// RunPublisher receives a snapshot after every run or stage transition.
// PublishRun must not block.
type RunPublisher interface {
	PublishRun(ctx context.Context, snapshot events.RunSnapshot)
}

// runProgress tracks one run's stage states. The two metrics stages run
// concurrently, so every transition holds mu while it publishes.
type runProgress struct {
	mu        sync.Mutex
	publisher RunPublisher
	now       func() time.Time
	snapshot  events.RunSnapshot
	started   map[string]time.Time
}

func newRunProgress(runID string, publisher RunPublisher, now func() time.Time) *runProgress {
	if publisher == nil {
		return nil
	}
	stages := make([]events.StageSnapshot, len(pipelineStages))
	for i, name := range pipelineStages {
		stages[i] = events.StageSnapshot{Name: name, Status: events.StatusPending}
	}
	t := now().UTC()
	return &runProgress{
		publisher: publisher,
		now:       now,
		started:   make(map[string]time.Time),
		snapshot: events.RunSnapshot{
			RunID:     runID,
			Status:    events.StatusRunning,
			Stages:    stages,
			StartedAt: t,
			UpdatedAt: t,
		},
	}
}

func (p *runProgress) start(ctx context.Context) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publish(ctx)
}

func (p *runProgress) beginStage(ctx context.Context, name string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started[name] = p.now()
	p.setStage(name, func(s *events.StageSnapshot) { s.Status = events.StatusRunning })
	p.snapshot.CurrentStage = name
	p.publish(ctx)
}

func (p *runProgress) endStage(ctx context.Context, name string, err error) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.started[name])
	p.setStage(name, func(s *events.StageSnapshot) {
		s.Duration = elapsed
		if err != nil {
			s.Status = events.StatusFailed
			s.Error = err.Error()
			return
		}
		s.Status = events.StatusCompleted
	})
	p.publish(ctx)
}

func (p *runProgress) finish(ctx context.Context, err error) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.now().UTC()
	p.snapshot.CompletedAt = &t
	p.snapshot.CurrentStage = ""
	if err != nil {
		p.snapshot.Status = events.StatusFailed
		p.snapshot.Error = err.Error()
	} else {
		p.snapshot.Status = events.StatusCompleted
	}
	p.publish(ctx)
}

func (p *runProgress) setStage(name string, fn func(*events.StageSnapshot)) {
	for i := range p.snapshot.Stages {
		if p.snapshot.Stages[i].Name == name {
			fn(&p.snapshot.Stages[i])
			return
		}
	}
}

// publish sends a copy; callers hold mu
func (p *runProgress) publish(ctx context.Context) {
	p.snapshot.UpdatedAt = p.now().UTC()

	done := 0
	for _, s := range p.snapshot.Stages {
		if s.Status == events.StatusCompleted {
			done++
		}
	}
	p.snapshot.Progress = done * 100 / len(p.snapshot.Stages)

	out := p.snapshot
	out.Stages = append([]events.StageSnapshot(nil), p.snapshot.Stages...)
	p.publisher.PublishRun(ctx, out)
}
