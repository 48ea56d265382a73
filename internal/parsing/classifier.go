package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lobbysight/lobbysight/internal/model"
)

// Log line prefixes emitted by the supported client variants
var clientInfoPrefixes = []string{
	"(Client thread) Info ",
	"[Client thread/INFO]: ",
	"INFO]: [LC] ",
	"[Client thread/INFO]: [LC]",
}

var chatPrefixes = []string{
	"(Client thread) Info [CHAT] ",
	"[Client thread/INFO]: [CHAT] ",
}

var rankPattern = regexp.MustCompile(`\[[a-zA-Z+]+\] `)

var lobbyFillPattern = regexp.MustCompile(`^\(\d+/\d+\)!$`)

// Classify parses a raw log line into a typed event. It is a stateless
// mapping; unrecognized lines report ok=false, which is not an error.
func Classify(line string) (model.Event, bool) {
	// Chat lines are user controlled, so locate the message using the
	// earliest-ending chat prefix. This stops a player typing a message
	// that itself contains a log prefix from injecting a fake event.
	if prefix, ok := lowestIndexPrefix(line, chatPrefixes); ok {
		return classifyChatMessage(stripUntil(line, prefix))
	}

	// Client info lines are not user controlled. Some prefixes share a
	// prefix with each other, so take the latest-ending match.
	if prefix, ok := highestIndexPrefix(line, clientInfoPrefixes); ok {
		return classifyClientInfo(stripUntil(line, prefix))
	}

	return model.Event{}, false
}

func classifyClientInfo(info string) (model.Event, bool) {
	const settingUserPrefix = "Setting user: "
	if strings.HasPrefix(info, settingUserPrefix) {
		username := strings.TrimSpace(strings.TrimPrefix(info, settingUserPrefix))
		return model.Event{Type: model.EventInitializeAs, Username: username}, true
	}
	return model.Event{}, false
}

func classifyChatMessage(message string) (model.Event, bool) {
	message = removeDedupSuffix(message)

	const whoPrefix = "ONLINE: "
	if rest, ok := strings.CutPrefix(message, whoPrefix); ok {
		// ONLINE: <username1>, <username2>, ..., <usernameN>
		return model.Event{Type: model.EventLobbyList, Usernames: strings.Split(rest, ", ")}, true
	}

	if strings.HasPrefix(message, "Your new API key is ") {
		// Your new API key is deadbeef-ae10-4d07-25f6-f23130b92652
		words := strings.Split(message, " ")
		if len(words) != 6 {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventNewAPIKey, APIKey: words[5]}, true
	}

	if strings.HasPrefix(message, "You are now nicked as ") {
		// You are now nicked as AmazingNick!
		words := strings.Split(message, " ")
		if !wordsMatch(words[:len(words)-1], "You are now nicked as") {
			return model.Event{}, false
		}
		last := words[len(words)-1]
		if !strings.HasSuffix(last, "!") {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventNewNickname, Nick: strings.TrimSuffix(last, "!")}, true
	}

	if strings.HasPrefix(message, "Sending you to ") {
		return model.Event{Type: model.EventLobbySwap}, true
	}

	if message == "You were sent to a lobby because someone in your party left!" {
		return model.Event{Type: model.EventLobbySwap}, true
	}

	if strings.HasPrefix(message, "Bed Wars") {
		// Title line printed as the game begins (and again at its end,
		// before the scoreboard)
		return model.Event{Type: model.EventGameStart}, true
	}

	if strings.HasPrefix(message, "1st Killer ") {
		// 1st Killer - [MVP+] <username> - <n>
		// First line of the game end scoreboard
		return model.Event{Type: model.EventGameEnd}, true
	}

	if strings.Contains(message, " has joined (") {
		// <username> has joined (<x>/<n>)!
		words := strings.Split(message, " ")
		if len(words) < 4 {
			return model.Event{}, false
		}
		if !wordsMatch(words[1:3], "has joined") {
			return model.Event{}, false
		}
		username := words[0]
		fill := words[3]
		if !lobbyFillPattern.MatchString(fill) {
			return model.Event{}, false
		}

		parts := strings.SplitN(strings.TrimSuffix(strings.TrimPrefix(fill, "("), ")!"), "/", 2)
		count, err := strconv.Atoi(parts[0])
		if err != nil {
			return model.Event{}, false
		}
		cap, err := strconv.Atoi(parts[1])
		if err != nil {
			return model.Event{}, false
		}

		if !ValidUsername(username) {
			return model.Event{}, false
		}
		return model.Event{
			Type:        model.EventLobbyJoin,
			Username:    username,
			PlayerCount: count,
			PlayerCap:   cap,
		}, true
	}

	if strings.Contains(message, " has quit!") {
		// <username> has quit!
		words := strings.Split(message, " ")
		if len(words) < 3 || !wordsMatch(words[1:3], "has quit!") {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventLobbyLeave, Username: words[0]}, true
	}

	// Party changes
	if strings.HasPrefix(message, "You left the party.") ||
		strings.HasPrefix(message, "You are not currently in a party.") ||
		message == "The party was disbanded because all invites expired and the party was empty" {
		return model.Event{Type: model.EventPartyDetach}, true
	}

	if strings.Contains(message, " has disbanded the party!") {
		words := strings.Split(removeRanks(message), " ")
		if len(words) < 5 || !wordsMatch(words[1:], "has disbanded the party!") {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventPartyDetach}, true
	}

	if strings.HasPrefix(message, "You have been kicked from the party by ") {
		return model.Event{Type: model.EventPartyDetach}, true
	}

	const partyYouJoinPrefix = "You have joined "
	if rest, ok := strings.CutPrefix(message, partyYouJoinPrefix); ok {
		// You have joined [MVP++] <username>'s party!
		apostrophe := strings.Index(rest, "'")
		if apostrophe == -1 {
			return model.Event{}, false
		}
		username := removeRanks(rest[:apostrophe])
		return model.Event{Type: model.EventPartyAttach, Username: username}, true
	}

	const partyingWithPrefix = "You'll be partying with: "
	if rest, ok := strings.CutPrefix(message, partyingWithPrefix); ok {
		// You'll be partying with: Player2, [MVP++] Player3, [MVP+] Player4
		names := removeRanks(rest)
		return model.Event{Type: model.EventPartyJoin, Usernames: strings.Split(names, ", ")}, true
	}

	if strings.Contains(message, " joined the party") {
		// [VIP+] <username> joined the party.
		words := strings.Split(removeRanks(message), " ")
		if len(words) < 4 || !wordsMatch(words[1:4], "joined the party.") {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventPartyJoin, Usernames: []string{words[0]}}, true
	}

	if strings.Contains(message, " has left the party") {
		// [VIP+] <username> has left the party.
		words := strings.Split(removeRanks(message), " ")
		if len(words) < 5 || !wordsMatch(words[1:5], "has left the party.") {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventPartyLeave, Usernames: []string{words[0]}}, true
	}

	if strings.Contains(message, " has been removed from the party.") {
		// [VIP+] <username> has been removed from the party.
		words := strings.Split(removeRanks(message), " ")
		if len(words) < 7 || !wordsMatch(words[1:], "has been removed from the party.") {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventPartyLeave, Usernames: []string{words[0]}}, true
	}

	if strings.Contains(message, " was removed from the party because they disconnected") {
		words := strings.Split(removeRanks(message), " ")
		if len(words) < 9 ||
			!wordsMatch(words[1:], "was removed from the party because they disconnected") {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventPartyLeave, Usernames: []string{words[0]}}, true
	}

	const kickOfflinePrefix = "Kicked "
	if strings.HasPrefix(message, kickOfflinePrefix) &&
		strings.Contains(message, " because they were offline.") {
		// Kicked [VIP] <username1>, <username2> because they were offline.
		cleaned := removeRanks(strings.TrimPrefix(message, kickOfflinePrefix))
		words := strings.Split(cleaned, " ")
		if len(words) < 5 || !wordsMatch(words[len(words)-4:], "because they were offline.") {
			return model.Event{}, false
		}
		usernames := strings.Split(strings.Join(words[:len(words)-4], " "), ", ")
		return model.Event{Type: model.EventPartyLeave, Usernames: usernames}, true
	}

	const transferPrefix = "The party was transferred to "
	if rest, ok := strings.CutPrefix(message, transferPrefix); ok {
		// The party was transferred to [VIP] <someone> because [MVP++] <username> left
		words := strings.Split(removeRanks(rest), " ")
		if len(words) < 4 {
			return model.Event{}, false
		}
		// should be: <someone> because <username> left
		if words[1] != "because" || words[3] != "left" {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventPartyLeave, Usernames: []string{words[2]}}, true
	}

	if rest, ok := strings.CutPrefix(message, "Party Members ("); ok {
		// Party Members (<n>)
		// Header of the /party list response; the role lines follow.
		// Some client forks inline the membership after the count.
		if _, list, found := strings.Cut(rest, "): "); found {
			names := strings.Split(removeRanks(list), ", ")
			return model.Event{Type: model.EventPartyListIncoming, Usernames: names}, true
		}
		return model.Event{Type: model.EventPartyListIncoming}, true
	}

	for _, role := range []string{"Leader", "Moderators", "Members"} {
		prefix := "Party " + role + ": "
		if rest, ok := strings.CutPrefix(message, prefix); ok {
			// Party <Role>: [MVP++] <username> ● <username> ●
			cleaned := removeRanks(rest)
			cleaned = strings.ReplaceAll(cleaned, " ●", "")
			cleaned = strings.ReplaceAll(cleaned, " ?", "")
			cleaned = strings.TrimSpace(cleaned)
			return model.Event{
				Type:      model.EventPartyRoleList,
				Usernames: strings.Split(cleaned, " "),
				Role:      strings.ToLower(role),
			}, true
		}
	}

	const whisperCommandPrefix = "Can't find a player by the name of '!"
	if rest, ok := strings.CutPrefix(message, whisperCommandPrefix); ok {
		// Can't find a player by the name of '!<nick>=<username>'
		// Manual denick entry via a whisper to a bogus player
		if rest == "" || !strings.HasSuffix(rest, "'") {
			return model.Event{}, false
		}
		command := strings.TrimSuffix(rest, "'")
		if !strings.Contains(command, "=") {
			return model.Event{}, false
		}
		parts := strings.Split(command, "=")
		if len(parts) != 2 {
			return model.Event{}, false
		}
		return model.Event{Type: model.EventWhisperSetNick, Nick: parts[0], Username: parts[1]}, true
	}

	return model.Event{}, false
}

// stripUntil removes the first occurrence of prefix and everything before it
func stripUntil(line, prefix string) string {
	idx := strings.Index(line, prefix)
	return strings.TrimSpace(line[idx+len(prefix):])
}

// removeRanks strips rank tags like [MVP++] from a player string
func removeRanks(s string) string {
	return rankPattern.ReplaceAllString(s, "")
}

// lowestIndexPrefix returns the candidate whose occurrence ends earliest
// in source
func lowestIndexPrefix(source string, candidates []string) (string, bool) {
	best, bestEnd := "", -1
	for _, c := range candidates {
		idx := strings.Index(source, c)
		if idx == -1 {
			continue
		}
		end := idx + len(c)
		if bestEnd == -1 || end < bestEnd {
			best, bestEnd = c, end
		}
	}
	return best, bestEnd != -1
}

// highestIndexPrefix returns the candidate whose occurrence ends latest
// in source
func highestIndexPrefix(source string, candidates []string) (string, bool) {
	best, bestEnd := "", -1
	for _, c := range candidates {
		idx := strings.Index(source, c)
		if idx == -1 {
			continue
		}
		if end := idx + len(c); end > bestEnd {
			best, bestEnd = c, end
		}
	}
	return best, bestEnd != -1
}

// wordsMatch reports whether words joined by spaces equals target
func wordsMatch(words []string, target string) bool {
	return strings.Join(words, " ") == target
}

// removeDedupSuffix strips the [xN] marker appended to repeated chat messages
func removeDedupSuffix(message string) string {
	if !strings.HasSuffix(message, "]") {
		return message
	}
	idx := strings.LastIndex(message, " ")
	if idx == -1 {
		return message
	}
	last := message[idx+1:]
	if !strings.HasPrefix(last, "[x") {
		return message
	}
	if _, err := strconv.Atoi(strings.TrimSuffix(last[2:], "]")); err != nil {
		return message
	}
	return message[:idx]
}

// ValidUsername reports whether a string looks like a legal player name.
// Names are 3-16 word characters; a couple of grandfathered accounts fall
// outside that, so the accepted length range is wider.
func ValidUsername(username string) bool {
	if len(username) < 1 || len(username) > 20 {
		return false
	}
	for _, r := range username {
		if r == '_' ||
			(r >= '0' && r <= '9') ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}
	return true
}
