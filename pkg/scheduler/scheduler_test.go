package scheduler

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sijadev/IMF-Test-Manager/pkg/executor"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/persistence/file"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
	"github.com/sijadev/IMF-Test-Manager/pkg/registry"
	"github.com/sijadev/IMF-Test-Manager/pkg/testutil"
)

const kindPing models.StepKind = "ping"

type pingHandler struct {
	fired chan struct{}
}

func (h *pingHandler) Execute(_ context.Context, _ *models.ExecutionStep, _ *models.ExecutionContext, _ *slog.Logger) (any, error) {
	select {
	case h.fired <- struct{}{}:
	default:
	}

	return "pong", nil
}

type pingFactory struct {
	handler *pingHandler
}

func (f *pingFactory) Create(_ map[string]any) (protocol.StepHandler, error) {
	return f.handler, nil
}

func (f *pingFactory) Kind() models.StepKind  { return kindPing }
func (f *pingFactory) Name() string           { return "Ping" }
func (f *pingFactory) Description() string    { return "Signals each firing" }
func (f *pingFactory) Schema() map[string]any { return nil }

func newTestScheduler(t *testing.T, fired chan struct{}) *Scheduler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	reg := registry.NewRegistry(logger)
	reg.RegisterHandler(&pingFactory{handler: &pingHandler{fired: fired}})

	store := file.NewPersistence(t.TempDir())

	workflow := testutil.CreateTestWorkflow(testutil.CreateTestStep(
		testutil.WithID("ping-step"),
		testutil.WithKind(kindPing),
		testutil.WithParameters(nil),
	))
	workflow.ID = "wf-scheduled"
	require.NoError(t, store.SaveWorkflow(context.Background(), workflow))

	return NewScheduler(executor.New(reg, logger), store, logger)
}

func TestScheduler_FiresStoredWorkflow(t *testing.T) {
	fired := make(chan struct{}, 1)
	sched := newTestScheduler(t, fired)

	require.NoError(t, sched.Add(context.Background(), "@every 1s", "wf-scheduled"))

	sched.Start()
	defer sched.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled workflow never fired")
	}
}

func TestScheduler_RemoveStopsFiring(t *testing.T) {
	fired := make(chan struct{}, 1)
	sched := newTestScheduler(t, fired)

	require.NoError(t, sched.Add(context.Background(), "@every 1s", "wf-scheduled"))
	sched.Remove("wf-scheduled")

	sched.Start()
	defer sched.Stop()

	select {
	case <-fired:
		t.Fatal("removed schedule must not fire")
	case <-time.After(1500 * time.Millisecond):
	}
}

func TestScheduler_AddRejectsBadInput(t *testing.T) {
	fired := make(chan struct{}, 1)
	sched := newTestScheduler(t, fired)

	assert.Error(t, sched.Add(context.Background(), "@every 1s", ""), "workflow id is required")
	assert.Error(t, sched.Add(context.Background(), "not-a-cron-spec", "wf-scheduled"))
}

func TestScheduler_StartAndStopAreIdempotent(t *testing.T) {
	fired := make(chan struct{}, 1)
	sched := newTestScheduler(t, fired)

	sched.Start()
	sched.Start()
	sched.Stop()
	sched.Stop()
}

func TestScheduler_MissingWorkflowIsLoggedNotFatal(t *testing.T) {
	fired := make(chan struct{}, 1)
	sched := newTestScheduler(t, fired)

	require.NoError(t, sched.Add(context.Background(), "@every 1s", "wf-ghost"))

	sched.Start()
	defer sched.Stop()

	// The firing fails to load its workflow; the scheduler keeps running.
	time.Sleep(1500 * time.Millisecond)
}
