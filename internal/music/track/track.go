package track

import "time"

// UnknownTitle is used when a resolver returns no title for a track.
const UnknownTitle = "UNKNOWN TRACK"

// Track describes a single audio item. Immutable once constructed.
type Track struct {
	Title    string
	URL      string
	Duration time.Duration // zero when the resolver reports none
}
