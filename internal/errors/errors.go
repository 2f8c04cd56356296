package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/services"
	"github.com/yukikurage/room-workflow-api/internal/workflow"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeDuplicateAssignment = "DUPLICATE_ASSIGNMENT"

	// Workflow errors
	ErrCodeInvalidTransition = "INVALID_TRANSITION"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// TransitionDetails is attached to INVALID_TRANSITION responses
type TransitionDetails struct {
	CurrentStatus string `json:"current_status"`
	Event         string `json:"event"`
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests, NewAPIError(ErrCodeRateLimited, "Too many requests"))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// FromServiceError maps a service error onto its HTTP status and APIError.
// Unrecognised errors are logged and answered with 500.
func FromServiceError(c *gin.Context, err error) {
	var transition *workflow.InvalidTransitionError
	switch {
	case stderrors.As(err, &transition):
		RespondWithError(c, http.StatusConflict, NewAPIErrorWithDetails(
			ErrCodeInvalidTransition,
			err.Error(),
			TransitionDetails{CurrentStatus: string(transition.Current), Event: string(transition.Event)},
		))

	case stderrors.Is(err, services.ErrDuplicateAssignment):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeDuplicateAssignment, err.Error()))

	case stderrors.Is(err, services.ErrConcurrentTransition),
		stderrors.Is(err, services.ErrAlreadyRated):
		Conflict(c, err.Error())

	case stderrors.Is(err, services.ErrRoomNotFound),
		stderrors.Is(err, services.ErrFreelancerNotFound),
		stderrors.Is(err, services.ErrAssignmentNotFound),
		stderrors.Is(err, services.ErrMessageNotFound),
		stderrors.Is(err, services.ErrSlackChannelNotFound):
		NotFound(c, err.Error())

	case stderrors.Is(err, services.ErrNotRoomClient),
		stderrors.Is(err, services.ErrNotParticipant),
		stderrors.Is(err, services.ErrNotSelf),
		stderrors.Is(err, services.ErrEventNotPermitted):
		Forbidden(c, err.Error())

	case stderrors.Is(err, services.ErrEmptyMessage),
		stderrors.Is(err, services.ErrInvalidRate),
		stderrors.Is(err, services.ErrAssignmentNotCompleted),
		stderrors.Is(err, services.ErrInvalidFreelancerState),
		stderrors.Is(err, services.ErrFreelancerPaused),
		stderrors.Is(err, workflow.ErrUnknownEvent),
		stderrors.Is(err, workflow.ErrUnknownStatus):
		BadRequest(c, err.Error())

	default:
		logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("unhandled service error")
		InternalError(c, "")
	}
}
