// Package registry maps step kinds to their handler factories.
// Registration happens at setup time, before any workflow run starts;
// during execution the registry is read-only.
package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
)

// ErrUnregisteredKind is returned when a workflow references a step
// kind no factory was registered for.
var ErrUnregisteredKind = errors.New("step kind not registered")

type Registry struct {
	logger    *slog.Logger
	factories map[models.StepKind]protocol.HandlerFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.StepKind]protocol.HandlerFactory),
	}
}

// RegisterHandler registers a factory for its step kind, replacing any
// previous registration for the same kind.
func (r *Registry) RegisterHandler(factory protocol.HandlerFactory) {
	r.factories[factory.Kind()] = factory
	r.logger.Debug("Registered step handler", "kind", factory.Kind(), "name", factory.Name())
}

// Resolve returns the factory for a step kind.
func (r *Registry) Resolve(kind models.StepKind) (protocol.HandlerFactory, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredKind, kind)
	}

	return factory, nil
}

// ValidateStep checks that the step's kind is registered and that its
// parameters satisfy the factory schema. Used by the executor's
// preflight, before any step runs.
func (r *Registry) ValidateStep(step *models.ExecutionStep) error {
	factory, err := r.Resolve(step.Kind)
	if err != nil {
		return err
	}

	return r.validateParameters(factory, step)
}

// CreateHandler validates the step's parameters against the factory
// schema and builds a handler instance for one execution.
func (r *Registry) CreateHandler(step *models.ExecutionStep) (protocol.StepHandler, error) {
	factory, err := r.Resolve(step.Kind)
	if err != nil {
		return nil, err
	}

	if err := r.validateParameters(factory, step); err != nil {
		return nil, err
	}

	return factory.Create(step.Parameters)
}

// Kinds returns all registered step kinds.
func (r *Registry) Kinds() []models.StepKind {
	kinds := make([]models.StepKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}

	return kinds
}

func (r *Registry) validateParameters(factory protocol.HandlerFactory, step *models.ExecutionStep) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	parameters := step.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(parameters)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate parameters for step %s: %w", step.ID, err)
	}

	if !result.Valid() {
		issues := ""
		for _, desc := range result.Errors() {
			issues += desc.String() + "; "
		}

		return fmt.Errorf("invalid parameters for step %s: %s", step.ID, issues)
	}

	return nil
}
