package roster

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lobbysight/lobbysight/internal/model"
)

// minLobbyCap is the smallest lobby size we track. Joins reported for
// smaller lobbies are private/duel modes that are not worth enriching.
const minLobbyCap = 8

// Tracker is the roster state machine. It consumes classified log events
// strictly in order and maintains the authoritative party and lobby sets,
// plus the out-of-sync flag that tells the presentation layer the
// displayed membership may be stale.
//
// The desync heuristic: an incremental party add for a player we have
// never seen in the lobby implies a missed lobby join; a lobby join whose
// server-reported player count disagrees with our tracked lobby size
// implies missed joins or leaves. A bulk party list is authoritative and
// clears the flag, as does a world reset.
type Tracker struct {
	logger *slog.Logger

	mu        sync.Mutex
	seq       uint64
	own       string
	party     map[string]uint64 // username -> last seen sequence
	lobby     map[string]uint64
	inQueue   bool
	outOfSync bool

	changes chan struct{}
}

// New creates an empty Tracker
func New(logger *slog.Logger) *Tracker {
	return &Tracker{
		logger:  logger,
		party:   make(map[string]uint64),
		lobby:   make(map[string]uint64),
		changes: make(chan struct{}, 1),
	}
}

// Changes returns a channel that receives a signal whenever the
// membership visible in Members may have changed. Signals are coalesced.
func (t *Tracker) Changes() <-chan struct{} {
	return t.changes
}

// Apply processes one event and reports whether membership changed
func (t *Tracker) Apply(ev model.Event) bool {
	t.mu.Lock()
	changed := t.apply(ev)
	t.mu.Unlock()

	if changed {
		select {
		case t.changes <- struct{}{}:
		default:
		}
	}
	return changed
}

func (t *Tracker) apply(ev model.Event) bool {
	t.seq++

	switch ev.Type {
	case model.EventInitializeAs:
		// Restart or account switch: nothing we knew still holds
		t.logger.Info("playing as user, clearing roster", slog.String("username", ev.Username))
		t.own = ev.Username
		t.clearPartyLocked()
		t.clearLobbyLocked()
		t.inQueue = false
		t.outOfSync = false
		return true

	case model.EventLobbySwap:
		t.logger.Info("lobby swap, clearing lobby")
		t.clearLobbyLocked()
		t.inQueue = false
		return true

	case model.EventLobbyList:
		// /who output overrides the lobby wholesale
		t.logger.Info("lobby list received", slog.Int("players", len(ev.Usernames)))
		t.clearLobbyLocked()
		for _, u := range ev.Usernames {
			t.lobby[u] = t.seq
		}
		t.inQueue = true
		t.outOfSync = false
		return true

	case model.EventLobbyJoin:
		if ev.PlayerCap < minLobbyCap {
			return false
		}
		if !t.inQueue {
			// New queue: the previous lobby is gone
			t.clearLobbyLocked()
			t.inQueue = true
		}
		t.lobby[ev.Username] = t.seq

		if ev.PlayerCount != len(t.lobby) {
			// The server told us how many players there are and we
			// disagree, so we have missed events
			t.outOfSync = true
			if ev.PlayerCount < len(t.lobby) {
				// We know of too many players; start over from this join
				t.clearLobbyLocked()
				t.lobby[ev.Username] = t.seq
				t.outOfSync = ev.PlayerCount != len(t.lobby)
			}
		} else {
			t.outOfSync = false
		}
		return true

	case model.EventLobbyLeave:
		if _, ok := t.lobby[ev.Username]; !ok {
			t.logger.Warn("removing player not in lobby", slog.String("username", ev.Username))
		}
		delete(t.lobby, ev.Username)
		delete(t.party, ev.Username)
		return true

	case model.EventPartyAttach:
		// We joined someone's party: start clean with them in it
		t.clearPartyLocked()
		t.party[ev.Username] = t.seq
		return true

	case model.EventPartyDetach:
		t.clearPartyLocked()
		return true

	case model.EventPartyJoin:
		for _, u := range ev.Usernames {
			if _, inLobby := t.lobby[u]; !inLobby && u != t.own {
				// A party member we never saw join the lobby implies we
				// missed events
				t.outOfSync = true
			}
			t.party[u] = t.seq
		}
		return len(ev.Usernames) > 0

	case model.EventPartyLeave:
		for _, u := range ev.Usernames {
			if u == t.own {
				t.clearPartyLocked()
				return true
			}
		}
		for _, u := range ev.Usernames {
			if _, ok := t.party[u]; !ok {
				t.logger.Warn("removing player not in party", slog.String("username", u))
				continue
			}
			delete(t.party, u)
		}
		return true

	case model.EventPartyListIncoming:
		// A bulk party list replaces the party wholesale and is
		// authoritative: clear whatever divergence we had. Role lines
		// follow for clients that do not inline the membership.
		t.clearPartyLocked()
		for _, u := range ev.Usernames {
			t.party[u] = t.seq
		}
		t.outOfSync = false
		return len(ev.Usernames) > 0

	case model.EventPartyRoleList:
		for _, u := range ev.Usernames {
			t.party[u] = t.seq
		}
		t.outOfSync = false
		return len(ev.Usernames) > 0

	case model.EventGameStart:
		t.inQueue = false
		return false

	case model.EventGameEnd:
		t.clearLobbyLocked()
		return true
	}

	return false
}

// Members returns the current membership. A player appears exactly once;
// party membership wins over plain lobby presence.
func (t *Tracker) Members() []model.RosterMember {
	t.mu.Lock()
	defer t.mu.Unlock()

	members := make([]model.RosterMember, 0, len(t.party)+len(t.lobby))
	for u, seen := range t.party {
		members = append(members, model.RosterMember{Username: u, Kind: model.KindParty, LastSeen: seen})
	}
	for u, seen := range t.lobby {
		if _, inParty := t.party[u]; inParty {
			continue
		}
		members = append(members, model.RosterMember{Username: u, Kind: model.KindLobby, LastSeen: seen})
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].Kind != members[j].Kind {
			return members[i].Kind == model.KindParty
		}
		return strings.ToLower(members[i].Username) < strings.ToLower(members[j].Username)
	})
	return members
}

// OwnUsername returns the local player's username, if known
func (t *Tracker) OwnUsername() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.own
}

// OutOfSync reports whether the tracked membership may be stale
func (t *Tracker) OutOfSync() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outOfSync
}

// Reset clears all tracked state. Exposed as a manual recovery hook.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.clearPartyLocked()
	t.clearLobbyLocked()
	t.inQueue = false
	t.outOfSync = false
	t.mu.Unlock()

	select {
	case t.changes <- struct{}{}:
	default:
	}
}

// MarkOutOfSync raises the out-of-sync flag. Exposed as a manual hook for
// when the user knows the overlay has drifted.
func (t *Tracker) MarkOutOfSync() {
	t.mu.Lock()
	t.outOfSync = true
	t.mu.Unlock()

	select {
	case t.changes <- struct{}{}:
	default:
	}
}

// clearPartyLocked empties the party, keeping ourselves in it when known.
// Caller holds t.mu.
func (t *Tracker) clearPartyLocked() {
	t.party = make(map[string]uint64)
	if t.own != "" {
		t.party[t.own] = t.seq
	}
}

// clearLobbyLocked empties the lobby. Our own name is not re-added: it
// normally arrives via a join message, and we may be nicked.
// Caller holds t.mu.
func (t *Tracker) clearLobbyLocked() {
	t.lobby = make(map[string]uint64)
}
