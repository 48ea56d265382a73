package model

import "time"

// Row is one displayed player: who they are, how they are present, and
// whatever stats we have for them right now
type Row struct {
	Identity Identity
	Kind     MembershipKind
	Record   StatsRecord
}

// Snapshot is an immutable projection of the roster and its stats,
// published wholesale after each enrichment pass. Seq increases with
// every pass; consumers and the shared state use it to discard results
// from passes that were superseded before they finished.
type Snapshot struct {
	Seq       uint64
	Rows      []Row
	OutOfSync bool
	TakenAt   time.Time
}
