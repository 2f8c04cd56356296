package workflow

import "errors"

var ErrEventNotPermitted = errors.New("actor is not permitted to fire this event")

// Role is the part an actor plays on an assignment.
type Role string

const (
	RoleFreelancer Role = "freelancer" // the assigned freelancer
	RoleClient     Role = "client"     // room owner or manager
)

var eventRoles = map[Event][]Role{
	FreelancerAccepts:         {RoleFreelancer},
	FreelancerRejects:         {RoleFreelancer},
	WorkStarts:                {RoleFreelancer, RoleClient},
	ClientRequestsMoreWork:    {RoleClient},
	FreelancerMarksIncomplete: {RoleFreelancer},
	FreelancerResumes:         {RoleFreelancer},
	WorkCompleted:             {RoleClient},
}

// Permitted reports whether role may fire event.
func Permitted(role Role, event Event) bool {
	for _, r := range eventRoles[event] {
		if r == role {
			return true
		}
	}
	return false
}
