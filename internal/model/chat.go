package model

import "time"

// ChatMessageID uniquely identifies a chat message
type ChatMessageID string

// ChatMessage is one line of room chat
type ChatMessage struct {
	ID        ChatMessageID
	RoomID    RoomID
	UserID    UserID
	Username  string
	Text      string
	CreatedAt time.Time
}
