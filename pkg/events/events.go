// Package events defines event types and structures for execution
// lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries all execution lifecycle events.
const Topic = "imftest.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent  EventType = "execution.started"
	ExecutionFinishedEvent EventType = "execution.finished"
	StepCompletedEvent     EventType = "execution.step.completed"
	StepFailedEvent        EventType = "execution.step.failed"
	StepSkippedEvent       EventType = "execution.step.skipped"
	RollbackStartedEvent   EventType = "execution.rollback.started"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	WorkflowID  string         `json:"workflow_id"`
	ExecutionID string         `json:"execution_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID, executionID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now(),
		WorkflowID:  workflowID,
		ExecutionID: executionID,
	}
}

type ExecutionStarted struct {
	BaseEvent

	StepCount int `json:"step_count"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionFinished struct {
	BaseEvent

	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}

type StepCompleted struct {
	BaseEvent

	StepID   string        `json:"step_id"`
	Duration time.Duration `json:"duration"`
}

func (e StepCompleted) GetType() EventType {
	return StepCompletedEvent
}

type StepFailed struct {
	BaseEvent

	StepID string `json:"step_id"`
	Error  string `json:"error"`
}

func (e StepFailed) GetType() EventType {
	return StepFailedEvent
}

type StepSkipped struct {
	BaseEvent

	StepID string `json:"step_id"`
}

func (e StepSkipped) GetType() EventType {
	return StepSkippedEvent
}

type RollbackStarted struct {
	BaseEvent

	FailedStepID string   `json:"failed_step_id"`
	StepsToUndo  []string `json:"steps_to_undo"`
}

func (e RollbackStarted) GetType() EventType {
	return RollbackStartedEvent
}
