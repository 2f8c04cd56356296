package constants

import "time"

// Session and gin context keys
const (
	ContextKeyUserID       = "user_id"
	ContextKeyFreelancerID = "freelancer_id"
	ContextKeyActor        = "actor"
	ContextKeyRoom         = "room"
)

// Pagination
const (
	MinPageSize     = 1
	MaxPageSize     = 200
	RoomPageSize    = 20
	MessagePageSize = 50
)

// Presence
const (
	OnlineWindow = 10 * time.Minute
)

// Messages closer than this to the previous message by the same author are grouped.
const MessageGroupingWindow = time.Minute

// Freelancer rating bounds
const (
	MinRate = 1
	MaxRate = 5
)
