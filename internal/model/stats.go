package model

import "time"

// StatsOutcome classifies the result of an enrichment attempt
type StatsOutcome string

const (
	// OutcomePending means the fetch has not completed yet, or was
	// throttled and will be retried on the next pass
	OutcomePending StatsOutcome = "pending"
	// OutcomeKnown means stats were resolved successfully
	OutcomeKnown StatsOutcome = "known"
	// OutcomeNicked is the terminal not-found result: the username has no
	// account behind it, so the player is assumed to be nicked
	OutcomeNicked StatsOutcome = "nicked"
	// OutcomeUnknown means the fetch failed for this pass only
	OutcomeUnknown StatsOutcome = "unknown"
)

// StatsPayload is the subset of remote player stats shown on overlay rows
type StatsPayload struct {
	Stars       float64
	FinalKills  int
	FinalDeaths int
	Wins        int
	Losses      int
	Winstreak   int
}

// FKDR returns the final kill/death ratio. A player with no final deaths
// gets their kill count, matching how the game community quotes it.
func (p StatsPayload) FKDR() float64 {
	if p.FinalDeaths == 0 {
		return float64(p.FinalKills)
	}
	return float64(p.FinalKills) / float64(p.FinalDeaths)
}

// WLR returns the win/loss ratio
func (p StatsPayload) WLR() float64 {
	if p.Losses == 0 {
		return float64(p.Wins)
	}
	return float64(p.Wins) / float64(p.Losses)
}

// StatsRecord is the enrichment result for one identity
type StatsRecord struct {
	Identity  Identity
	Outcome   StatsOutcome
	Payload   *StatsPayload // non-nil only when Outcome is OutcomeKnown
	Retriable bool          // a later pass may produce a better result
	FetchedAt time.Time
}

// PendingRecord returns a placeholder for an in-progress or throttled fetch
func PendingRecord(id Identity, at time.Time) StatsRecord {
	return StatsRecord{Identity: id, Outcome: OutcomePending, Retriable: true, FetchedAt: at}
}

// NickedRecord returns the terminal not-found record
func NickedRecord(id Identity, at time.Time) StatsRecord {
	return StatsRecord{Identity: id, Outcome: OutcomeNicked, Retriable: false, FetchedAt: at}
}

// UnknownRecord returns the per-pass failure placeholder
func UnknownRecord(id Identity, at time.Time) StatsRecord {
	return StatsRecord{Identity: id, Outcome: OutcomeUnknown, Retriable: true, FetchedAt: at}
}
