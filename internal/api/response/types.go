package response

import (
	"time"

	"github.com/lobbysight/lobbysight/internal/model"
)

// Stats represents a player's bedwars stats in API responses
type Stats struct {
	Stars       float64 `json:"stars"`
	FinalKills  int     `json:"final_kills"`
	FinalDeaths int     `json:"final_deaths"`
	FKDR        float64 `json:"fkdr"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WLR         float64 `json:"wlr"`
	Winstreak   int     `json:"winstreak"`
}

// StatsFromModel converts a model.StatsPayload to a response Stats
func StatsFromModel(p *model.StatsPayload) *Stats {
	if p == nil {
		return nil
	}
	return &Stats{
		Stars:       p.Stars,
		FinalKills:  p.FinalKills,
		FinalDeaths: p.FinalDeaths,
		FKDR:        p.FKDR(),
		Wins:        p.Wins,
		Losses:      p.Losses,
		WLR:         p.WLR(),
		Winstreak:   p.Winstreak,
	}
}

// Row represents one player on the overlay
type Row struct {
	Username string `json:"username"`
	UUID     string `json:"uuid,omitempty"`
	InParty  bool   `json:"in_party"`
	Outcome  string `json:"outcome"`
	Stats    *Stats `json:"stats,omitempty"`
}

// RowFromModel converts a model.Row to a response Row
func RowFromModel(r model.Row) Row {
	return Row{
		Username: r.Identity.Username,
		UUID:     string(r.Identity.UUID),
		InParty:  r.Kind == model.KindParty,
		Outcome:  string(r.Record.Outcome),
		Stats:    StatsFromModel(r.Record.Payload),
	}
}

// Snapshot represents the overlay state in API responses
type Snapshot struct {
	Seq       uint64    `json:"seq"`
	Rows      []Row     `json:"rows"`
	OutOfSync bool      `json:"out_of_sync"`
	TakenAt   time.Time `json:"taken_at"`
}

// SnapshotFromModel converts a model.Snapshot
func SnapshotFromModel(s model.Snapshot) Snapshot {
	rows := make([]Row, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = RowFromModel(r)
	}
	return Snapshot{
		Seq:       s.Seq,
		Rows:      rows,
		OutOfSync: s.OutOfSync,
		TakenAt:   s.TakenAt,
	}
}

// AliasEntry represents a curated alias mapping in API responses
type AliasEntry struct {
	Alias     string    `json:"alias"`
	UUID      string    `json:"uuid"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AliasEntryFromModel converts a model.AliasEntry
func AliasEntryFromModel(e *model.AliasEntry) AliasEntry {
	return AliasEntry{
		Alias:     e.Alias,
		UUID:      string(e.UUID),
		Note:      e.Note,
		UpdatedAt: e.UpdatedAt,
	}
}
