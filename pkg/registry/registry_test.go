package registry

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
	"github.com/sijadev/IMF-Test-Manager/pkg/testutil"
)

const kindEcho models.StepKind = "echo"

type echoHandler struct {
	message string
}

func (h *echoHandler) Execute(_ context.Context, _ *models.ExecutionStep, _ *models.ExecutionContext, _ *slog.Logger) (any, error) {
	return h.message, nil
}

type echoFactory struct {
	name string
}

func (f *echoFactory) Create(parameters map[string]any) (protocol.StepHandler, error) {
	message, _ := parameters["message"].(string)

	return &echoHandler{message: message}, nil
}

func (f *echoFactory) Kind() models.StepKind { return kindEcho }
func (f *echoFactory) Name() string          { return f.name }
func (f *echoFactory) Description() string   { return "Echoes its message parameter" }
func (f *echoFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
		},
		"required": []string{"message"},
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestRegisterAndResolve(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterHandler(&echoFactory{name: "Echo"})

	factory, err := reg.Resolve(kindEcho)
	require.NoError(t, err)
	assert.Equal(t, "Echo", factory.Name())

	assert.Equal(t, []models.StepKind{kindEcho}, reg.Kinds())
}

func TestRegisterReplacesPreviousFactory(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterHandler(&echoFactory{name: "First"})
	reg.RegisterHandler(&echoFactory{name: "Second"})

	factory, err := reg.Resolve(kindEcho)
	require.NoError(t, err)
	assert.Equal(t, "Second", factory.Name())
	assert.Len(t, reg.Kinds(), 1)
}

func TestResolveUnregisteredKind(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Resolve("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnregisteredKind)
}

func TestValidateStep(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterHandler(&echoFactory{name: "Echo"})

	valid := testutil.CreateTestStep(
		testutil.WithKind(kindEcho),
		testutil.WithParameters(map[string]any{"message": "hello"}),
	)
	assert.NoError(t, reg.ValidateStep(valid))

	missing := testutil.CreateTestStep(
		testutil.WithKind(kindEcho),
		testutil.WithParameters(map[string]any{}),
	)
	err := reg.ValidateStep(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameters")

	wrongType := testutil.CreateTestStep(
		testutil.WithKind(kindEcho),
		testutil.WithParameters(map[string]any{"message": 42}),
	)
	assert.Error(t, reg.ValidateStep(wrongType))
}

func TestCreateHandler(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterHandler(&echoFactory{name: "Echo"})

	step := testutil.CreateTestStep(
		testutil.WithKind(kindEcho),
		testutil.WithParameters(map[string]any{"message": "hello"}),
	)

	handler, err := reg.CreateHandler(step)
	require.NoError(t, err)

	result, err := handler.Execute(context.Background(), step, nil, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestCreateHandler_RejectsInvalidParameters(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterHandler(&echoFactory{name: "Echo"})

	step := testutil.CreateTestStep(
		testutil.WithKind(kindEcho),
		testutil.WithParameters(nil),
	)

	_, err := reg.CreateHandler(step)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameters")
}
