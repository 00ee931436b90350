package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/stroopgame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "stroop"

func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey maps a lower-cased username to a user ID
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, strings.ToLower(username))
}

func userStatsKey(id model.UserID) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, id)
}

// statsIndexKey is the SET of user IDs that have stats
func statsIndexKey() string {
	return fmt.Sprintf("%s:idx:stats", keyPrefix)
}

// playingKey is the SET of user IDs currently in a session
func playingKey() string {
	return fmt.Sprintf("%s:playing", keyPrefix)
}

func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsForRoomIndexKey is the SET of session IDs for a room
func sessionsForRoomIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:sessions_for_room:%s", keyPrefix, roomID)
}

func gamePlayerKey(sessionID model.SessionID, userID model.UserID) string {
	return fmt.Sprintf("%s:game_player:%s:%s", keyPrefix, sessionID, userID)
}

// gamePlayersForSessionIndexKey is the SET of game player keys for a session
func gamePlayersForSessionIndexKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:idx:game_players_for_session:%s", keyPrefix, sessionID)
}

func roundKey(id model.RoundID) string {
	return fmt.Sprintf("%s:round:%s", keyPrefix, id)
}

// roundsForSessionIndexKey is the SET of round keys for a session
func roundsForSessionIndexKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:idx:rounds_for_session:%s", keyPrefix, sessionID)
}

// answersKey is the LIST of answers for a session, in submission order
func answersKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:answers:%s", keyPrefix, sessionID)
}

// chatKey is the LIST of chat messages for a room, oldest first
func chatKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:chat:%s", keyPrefix, roomID)
}
