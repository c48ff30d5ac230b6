package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sijadev/IMF-Test-Manager/pkg/channels/gochannel"
	"github.com/sijadev/IMF-Test-Manager/pkg/eventbus"
	"github.com/sijadev/IMF-Test-Manager/pkg/events"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/testutil"
)

type eventSink struct {
	mu    sync.Mutex
	types []events.EventType
}

func (s *eventSink) add(eventType events.EventType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types = append(s.types, eventType)
}

func (s *eventSink) snapshot() []events.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]events.EventType{}, s.types...)
}

func (s *eventSink) count(eventType events.EventType) int {
	n := 0
	for _, t := range s.snapshot() {
		if t == eventType {
			n++
		}
	}

	return n
}

func subscribedBus(t *testing.T, ctx context.Context, sink *eventSink, types ...events.EventType) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(testLogger()))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	for _, eventType := range types {
		captured := eventType
		require.NoError(t, bus.Handle(captured, func(_ context.Context, _ interface{}) error {
			sink.add(captured)

			return nil
		}))
	}

	require.NoError(t, bus.Subscribe(ctx))

	return bus
}

func TestExecuteWorkflow_PublishesLifecycleEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &eventSink{}
	bus := subscribedBus(t, ctx, sink,
		events.ExecutionStartedEvent,
		events.StepCompletedEvent,
		events.ExecutionFinishedEvent,
	)

	exec := newTestExecutor(&stubHandler{
		execute: func(_ context.Context, _ *models.ExecutionStep, _ *models.ExecutionContext) (any, error) {
			return "ok", nil
		},
	}, WithEventPublisher(bus))

	workflow := testutil.CreateTestWorkflow(stubStep("a"), stubStep("b"))

	result, err := exec.ExecuteWorkflow(ctx, workflow)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Eventually(t, func() bool {
		return sink.count(events.ExecutionFinishedEvent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	seen := sink.snapshot()
	assert.Equal(t, events.ExecutionStartedEvent, seen[0], "the run opens with a started event")
	assert.Equal(t, 2, sink.count(events.StepCompletedEvent))
	assert.Equal(t, events.ExecutionFinishedEvent, seen[len(seen)-1])
}

func TestExecuteWorkflow_PublishesFailureAndRollbackEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &eventSink{}
	bus := subscribedBus(t, ctx, sink,
		events.StepFailedEvent,
		events.RollbackStartedEvent,
		events.ExecutionFinishedEvent,
	)

	exec := newTestExecutor(&stubHandler{
		execute: func(_ context.Context, step *models.ExecutionStep, _ *models.ExecutionContext) (any, error) {
			if step.ID == "b" {
				return nil, errors.New("boom")
			}

			return "ok", nil
		},
	}, WithEventPublisher(bus))

	workflow := testutil.CreateTestWorkflow(
		stubStep("a"),
		stubStep("b", testutil.WithDependsOn("a")),
	)
	workflow.Validation.RollbackOnFailure = true

	result, err := exec.ExecuteWorkflow(ctx, workflow)
	require.NoError(t, err)
	require.False(t, result.Success)

	assert.Eventually(t, func() bool {
		return sink.count(events.ExecutionFinishedEvent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, sink.count(events.StepFailedEvent))
	assert.Equal(t, 1, sink.count(events.RollbackStartedEvent))
}
