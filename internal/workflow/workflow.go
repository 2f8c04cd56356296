// Package workflow holds the assignment status machine: the closed set of
// statuses and events, the transition table, which actor may fire each event,
// and the freelancer-facing room buckets derived from a status.
package workflow

import (
	"errors"
	"fmt"

	"github.com/yukikurage/room-workflow-api/internal/models"
)

type Status = models.AssignmentStatus

const (
	Pending     = models.AssignmentStatusPending
	Accepted    = models.AssignmentStatusAccepted
	InProgress  = models.AssignmentStatusInProgress
	MoreWork    = models.AssignmentStatusMoreWork
	NotFinished = models.AssignmentStatusNotFinished
	Completed   = models.AssignmentStatusCompleted
	Rejected    = models.AssignmentStatusRejected
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{Pending, Accepted, InProgress, MoreWork, NotFinished, Completed, Rejected}

type Event string

const (
	FreelancerAccepts         Event = "freelancer_accepts"
	FreelancerRejects         Event = "freelancer_rejects"
	WorkStarts                Event = "work_starts"
	ClientRequestsMoreWork    Event = "client_requests_more_work"
	FreelancerMarksIncomplete Event = "freelancer_marks_incomplete"
	FreelancerResumes         Event = "freelancer_resumes"
	WorkCompleted             Event = "work_completed"
)

var Events = []Event{
	FreelancerAccepts,
	FreelancerRejects,
	WorkStarts,
	ClientRequestsMoreWork,
	FreelancerMarksIncomplete,
	FreelancerResumes,
	WorkCompleted,
}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownEvent      = errors.New("unknown assignment event")
	ErrUnknownStatus     = errors.New("unknown assignment status")
)

// InvalidTransitionError carries the status the assignment is actually in so
// callers can reconcile.
type InvalidTransitionError struct {
	Current Status
	Event   Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %q is not allowed from %q", ErrInvalidTransition, e.Event, e.Current)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type edge struct {
	from  Status
	event Event
}

var transitions = map[edge]Status{
	{Pending, FreelancerAccepts}:            Accepted,
	{Pending, FreelancerRejects}:            Rejected,
	{Accepted, WorkStarts}:                  InProgress,
	{InProgress, ClientRequestsMoreWork}:    MoreWork,
	{InProgress, FreelancerMarksIncomplete}: NotFinished,
	{MoreWork, FreelancerResumes}:           Accepted,
	{NotFinished, FreelancerResumes}:        Accepted,
	{Accepted, WorkCompleted}:               Completed,
	{InProgress, WorkCompleted}:             Completed,
	{MoreWork, WorkCompleted}:               Completed,
	{NotFinished, WorkCompleted}:            Completed,
}

// Transition returns the status reached by applying event to from.
func Transition(from Status, event Event) (Status, error) {
	if !ValidStatus(from) {
		return from, fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if !ValidEvent(event) {
		return from, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	to, ok := transitions[edge{from, event}]
	if !ok {
		return from, &InvalidTransitionError{Current: from, Event: event}
	}
	return to, nil
}

// Terminal statuses accept no events.
func Terminal(s Status) bool {
	return s == Completed || s == Rejected
}

func ValidStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func ValidEvent(e Event) bool {
	for _, v := range Events {
		if v == e {
			return true
		}
	}
	return false
}

// AvailableEvents lists the events that are legal from s, in table order.
func AvailableEvents(s Status) []Event {
	var out []Event
	for _, e := range Events {
		if _, ok := transitions[edge{s, e}]; ok {
			out = append(out, e)
		}
	}
	return out
}
