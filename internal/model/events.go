package model

import "time"

// EventType names an outgoing event. It is the SSE event name.
type EventType string

const (
	// Room events
	EventRoomUpdated EventType = "room-updated"
	EventRoomReset   EventType = "room-reset"
	EventUserJoined  EventType = "user-joined"
	EventUserLeft    EventType = "user-left"
	EventChatMessage EventType = "chat-message"
	EventTyping      EventType = "typing"

	// Game events
	EventGameStarted  EventType = "game-started"
	EventTurnChanged  EventType = "turn-changed"
	EventNewRound     EventType = "new-round"
	EventScoreUpdated EventType = "score-updated"
	EventScoreboard   EventType = "scoreboard"
	EventWinner       EventType = "winner"
	EventGameFinished EventType = "game-finished"
)

// Event is implemented by every outgoing event payload. The set is closed:
// each case has a fixed field set.
type Event interface {
	Type() EventType
	isEvent()
}

// EventPlayer is a seat snapshot carried by room events
type EventPlayer struct {
	UserID    UserID `json:"user_id"`
	Username  string `json:"username"`
	IsOwner   bool   `json:"is_owner"`
	SeatOrder int    `json:"seat_order"`
}

// EventOption is a round option as shown to clients
type EventOption struct {
	OptionID  OptionID `json:"option_id"`
	Order     int      `json:"order"`
	ColorID   ColorID  `json:"color_id"`
	ColorName string   `json:"color_name"`
	ColorHex  string   `json:"color_hex"`
	IsCorrect bool     `json:"is_correct"`
}

// RoomUpdated carries the seat-ordered player list
type RoomUpdated struct {
	RoomCode RoomCode      `json:"room_code"`
	Started  bool          `json:"started"`
	Players  []EventPlayer `json:"players"`
}

// RoomReset signals that the room went back to the lobby
type RoomReset struct {
	RoomCode RoomCode `json:"room_code"`
}

// UserJoined signals a subscriber connected to the room
type UserJoined struct {
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
}

// UserLeft signals a subscriber disconnected from the room
type UserLeft struct {
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
}

// ChatPosted carries a new chat line
type ChatPosted struct {
	MessageID ChatMessageID `json:"message_id"`
	UserID    UserID        `json:"user_id"`
	Username  string        `json:"username"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
}

// Typing signals that a user is typing in chat
type Typing struct {
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// GameStarted signals a new session
type GameStarted struct {
	SessionID       SessionID `json:"session_id"`
	RoundsPerPlayer int       `json:"rounds_per_player"`
	Seats           []UserID  `json:"seats"`
}

// TurnChanged names the player whose turn it is
type TurnChanged struct {
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
}

// NewRound carries the round the current player must answer
type NewRound struct {
	RoundID         RoundID       `json:"round_id"`
	UserID          UserID        `json:"user_id"`
	Word            string        `json:"word"`
	InkHex          string        `json:"ink_hex"`
	Options         []EventOption `json:"options"`
	RemainingRounds int           `json:"remaining_rounds"`
}

// ScoreUpdated carries the result of one answer
type ScoreUpdated struct {
	UserID    UserID `json:"user_id"`
	Score     int    `json:"score"`
	Delta     int    `json:"delta"`
	IsCorrect bool   `json:"is_correct"`
}

// Scoreboard carries the ranked rows of the session
type Scoreboard struct {
	Rows []ScoreboardRow `json:"rows"`
}

// Winner names the session winner
type Winner struct {
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// GameFinished carries the final ranked rows
type GameFinished struct {
	SessionID SessionID       `json:"session_id"`
	Rows      []ScoreboardRow `json:"rows"`
}

func (RoomUpdated) Type() EventType  { return EventRoomUpdated }
func (RoomReset) Type() EventType    { return EventRoomReset }
func (UserJoined) Type() EventType   { return EventUserJoined }
func (UserLeft) Type() EventType     { return EventUserLeft }
func (ChatPosted) Type() EventType   { return EventChatMessage }
func (Typing) Type() EventType       { return EventTyping }
func (GameStarted) Type() EventType  { return EventGameStarted }
func (TurnChanged) Type() EventType  { return EventTurnChanged }
func (NewRound) Type() EventType     { return EventNewRound }
func (ScoreUpdated) Type() EventType { return EventScoreUpdated }
func (Scoreboard) Type() EventType   { return EventScoreboard }
func (Winner) Type() EventType       { return EventWinner }
func (GameFinished) Type() EventType { return EventGameFinished }

func (RoomUpdated) isEvent()  {}
func (RoomReset) isEvent()    {}
func (UserJoined) isEvent()   {}
func (UserLeft) isEvent()     {}
func (ChatPosted) isEvent()   {}
func (Typing) isEvent()       {}
func (GameStarted) isEvent()  {}
func (TurnChanged) isEvent()  {}
func (NewRound) isEvent()     {}
func (ScoreUpdated) isEvent() {}
func (Scoreboard) isEvent()   {}
func (Winner) isEvent()       {}
func (GameFinished) isEvent() {}
