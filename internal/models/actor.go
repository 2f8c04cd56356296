package models

import "fmt"

type ActorKind string

const (
	ActorUser       ActorKind = "user"
	ActorFreelancer ActorKind = "freelancer"
)

// Actor is whoever performs an operation: a user (client or manager) or a freelancer.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   uint64    `json:"id"`
}

func UserActor(id uint64) Actor {
	return Actor{Kind: ActorUser, ID: id}
}

func FreelancerActor(id uint64) Actor {
	return Actor{Kind: ActorFreelancer, ID: id}
}

func (a Actor) IsUser() bool       { return a.Kind == ActorUser }
func (a Actor) IsFreelancer() bool { return a.Kind == ActorFreelancer }

func (a Actor) String() string {
	return fmt.Sprintf("%s:%d", a.Kind, a.ID)
}

// AuthorOf reports whether the actor wrote the message.
func (a Actor) AuthorOf(m Message) bool {
	switch a.Kind {
	case ActorUser:
		return m.UserID != nil && *m.UserID == a.ID
	case ActorFreelancer:
		return m.FreelancerID != nil && *m.FreelancerID == a.ID
	}
	return false
}

// AuthorIDs returns the (user_id, freelancer_id) pair to store on a row
// attributed to this actor.
func (a Actor) AuthorIDs() (userID *uint64, freelancerID *uint64) {
	id := a.ID
	switch a.Kind {
	case ActorUser:
		return &id, nil
	case ActorFreelancer:
		return nil, &id
	}
	return nil, nil
}

// MessageAuthor returns the actor that wrote m, or false for system messages.
func MessageAuthor(m Message) (Actor, bool) {
	switch {
	case m.UserID != nil:
		return UserActor(*m.UserID), true
	case m.FreelancerID != nil:
		return FreelancerActor(*m.FreelancerID), true
	}
	return Actor{}, false
}
