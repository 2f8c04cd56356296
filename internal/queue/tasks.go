package queue

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TypeAssignmentNotification = "notification:assignment"
	TypeSlackProvision         = "slack:provision"
	TypeSlackRelayOutbound     = "slack:relay_outbound"
)

// AssignmentPayload asks for the freelancer to be told about a new assignment.
type AssignmentPayload struct {
	AssignmentID uint64 `json:"assignment_id"`
	FreelancerID uint64 `json:"freelancer_id"`
	RoomID       uint64 `json:"room_id"`
}

// ProvisionPayload asks for the external channel of a binding to be created.
type ProvisionPayload struct {
	SlackChannelID uint64 `json:"slack_channel_id"`
}

// RelayPayload asks for a room message to be posted to Slack.
type RelayPayload struct {
	MessageID uint64 `json:"message_id"`
}

var (
	ErrMalformedPayload = errors.New("malformed task payload")
	ErrNoHandler        = errors.New("no handler registered for task type")
	ErrDeliveryDeferred = errors.New("delivery deferred")
)

// DeliveryDeferredError marks a side effect that could not be delivered now.
// It is logged and left to the transport's retry policy; callers of the
// operation that produced the task never see it.
type DeliveryDeferredError struct {
	TaskType string
	Err      error
}

func (e *DeliveryDeferredError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDeliveryDeferred, e.TaskType, e.Err)
}

func (e *DeliveryDeferredError) Unwrap() error {
	return e.Err
}

func (e *DeliveryDeferredError) Is(target error) bool {
	return target == ErrDeliveryDeferred
}

// Deferred wraps err as a DeliveryDeferredError for taskType.
func Deferred(taskType string, err error) error {
	if err == nil {
		return nil
	}
	return &DeliveryDeferredError{TaskType: taskType, Err: err}
}

// Decode unmarshals a task payload.
func Decode(payload []byte, v interface{}) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
