package model

// EventType identifies the type of a classified log event
type EventType string

const (
	// Client events
	EventInitializeAs EventType = "initialize_as"

	// Lobby events
	EventLobbySwap  EventType = "lobby_swap"
	EventLobbyList  EventType = "lobby_list"
	EventLobbyJoin  EventType = "lobby_join"
	EventLobbyLeave EventType = "lobby_leave"

	// Party events
	EventPartyAttach       EventType = "party_attach"
	EventPartyDetach       EventType = "party_detach"
	EventPartyJoin         EventType = "party_join"
	EventPartyLeave        EventType = "party_leave"
	EventPartyListIncoming EventType = "party_list_incoming"
	EventPartyRoleList     EventType = "party_role_list"

	// Game events
	EventGameStart EventType = "game_start"
	EventGameEnd   EventType = "game_end"

	// Settings events, classified here because they share the parser
	EventNewAPIKey      EventType = "new_api_key"
	EventNewNickname    EventType = "new_nickname"
	EventWhisperSetNick EventType = "whisper_set_nick"
)

// Event is a single classified log line. Which fields are populated
// depends on Type; unused fields are zero.
type Event struct {
	Type EventType

	// Username carries the single player of join/leave/attach events, the
	// own username for initialize_as, and the target account for
	// whisper_set_nick (empty there to clear the alias)
	Username string
	// Usernames carries bulk lists (lobby list, party joins/leaves, role lists)
	Usernames []string
	// Role is the party role for party_role_list events
	Role string

	// Lobby fill reported by the server on lobby_join
	PlayerCount int
	PlayerCap   int

	APIKey string
	Nick   string
}
