package workflow

import "fmt"

// Bucket is a freelancer-facing grouping of rooms by assignment status.
type Bucket string

const (
	BucketPending   Bucket = "pending"
	BucketAccepted  Bucket = "accepted"
	BucketAvailable Bucket = "available"
	BucketCompleted Bucket = "completed"

	// BucketRooms is the alias the UI uses for BucketAccepted.
	BucketRooms Bucket = "rooms"
)

var AllBuckets = []Bucket{BucketPending, BucketAccepted, BucketAvailable, BucketCompleted}

// Buckets is the single source of bucket membership for a status.
func Buckets(s Status) []Bucket {
	switch s {
	case Pending:
		return []Bucket{BucketPending, BucketAvailable}
	case Accepted, MoreWork, NotFinished:
		return []Bucket{BucketAccepted, BucketAvailable}
	case Completed:
		return []Bucket{BucketCompleted}
	default:
		// in_progress and rejected are in no bucket
		return nil
	}
}

// InBucket reports whether status s belongs to bucket b.
func InBucket(s Status, b Bucket) bool {
	b = canonical(b)
	for _, m := range Buckets(s) {
		if m == b {
			return true
		}
	}
	return false
}

// BucketStatuses returns the statuses in bucket b, derived from Buckets.
func BucketStatuses(b Bucket) []Status {
	var out []Status
	for _, s := range Statuses {
		if InBucket(s, b) {
			out = append(out, s)
		}
	}
	return out
}

// ParseBucket accepts a bucket name or its alias.
func ParseBucket(name string) (Bucket, error) {
	b := canonical(Bucket(name))
	for _, v := range AllBuckets {
		if v == b {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown room bucket %q", name)
}

func canonical(b Bucket) Bucket {
	if b == BucketRooms {
		return BucketAccepted
	}
	return b
}
