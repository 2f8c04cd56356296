package services

import (
	"errors"

	"github.com/yukikurage/room-workflow-api/internal/workflow"
)

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrFreelancerNotFound   = errors.New("freelancer not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrSlackChannelNotFound = errors.New("slack channel binding not found")

	ErrDuplicateAssignment  = errors.New("freelancer is already assigned to this room")
	ErrNotRoomClient        = errors.New("only the room owner or manager can perform this action")
	ErrNotParticipant       = errors.New("actor is not a participant of this room")
	ErrNotSelf              = errors.New("freelancers can only manage their own account")
	ErrFreelancerPaused     = errors.New("freelancer is not accepting work")
	ErrConcurrentTransition = errors.New("assignment status changed concurrently")
	ErrEventNotPermitted    = workflow.ErrEventNotPermitted

	ErrEmptyMessage           = errors.New("message body is required")
	ErrInvalidRate            = errors.New("rate must be between 1 and 5")
	ErrAssignmentNotCompleted = errors.New("only completed assignments can be rated")
	ErrAlreadyRated           = errors.New("assignment has already been rated")
	ErrInvalidFreelancerState = errors.New("status must be live or pause")

	// ErrRelayEcho means the Slack message already crossed the bridge.
	ErrRelayEcho = errors.New("slack message already relayed")
)
