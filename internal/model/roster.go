package model

// MembershipKind tags how a roster member is present
type MembershipKind string

const (
	KindParty MembershipKind = "party"
	KindLobby MembershipKind = "lobby"
)

// RosterMember is one player currently believed present. Party members
// are implicitly also in the lobby; Kind records the strongest claim.
type RosterMember struct {
	Username string
	Kind     MembershipKind
	// LastSeen is the value of the roster's event sequence counter when
	// this member was last touched
	LastSeen uint64
}
