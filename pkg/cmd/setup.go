// Package cmd provides common initialization functions for the
// command-line application.
package cmd

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/sijadev/IMF-Test-Manager/pkg/channels/gochannel"
	"github.com/sijadev/IMF-Test-Manager/pkg/eventbus"
	"github.com/sijadev/IMF-Test-Manager/pkg/generator"
	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/analysis"
	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/cleanup"
	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/generation"
	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/integration"
	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/validation"
	"github.com/sijadev/IMF-Test-Manager/pkg/persistence"
	"github.com/sijadev/IMF-Test-Manager/pkg/persistence/file"
	"github.com/sijadev/IMF-Test-Manager/pkg/registry"
)

// NewRegistry builds a registry with the native step handlers
// registered. Custom handlers can be added afterwards, before any
// workflow run starts.
func NewRegistry(logger *slog.Logger, gen *generator.Generator) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterHandler(generation.NewHandlerFactory(gen))
	reg.RegisterHandler(analysis.NewHandlerFactory())
	reg.RegisterHandler(validation.NewHandlerFactory())
	reg.RegisterHandler(integration.NewHandlerFactory())
	reg.RegisterHandler(cleanup.NewHandlerFactory())

	return reg
}

// NewEventBus creates the in-process event bus.
func NewEventBus(logger *slog.Logger) (eventbus.EventBus, error) {
	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, err
	}

	return eventbus.NewWatermillEventBus(pub, sub), nil
}

// NewPersistence creates the workflow store for the given data path.
func NewPersistence(dataPath string) persistence.Persistence {
	return file.NewPersistence(dataPath)
}
