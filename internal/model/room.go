package model

import (
	"cmp"
	"slices"
	"time"
)

// RoomID uniquely identifies a room
type RoomID string

// RoomCode is the short numeric code players use to join a room
type RoomCode string

// RoomPlayer is a membership record. Seat order defines turn order.
type RoomPlayer struct {
	UserID    UserID
	Username  string
	IsOwner   bool
	SeatOrder int
	JoinedAt  time.Time
}

// Room is a lobby that players join by code
type Room struct {
	ID              RoomID
	Code            RoomCode
	CreatorID       UserID
	MinPlayers      int
	MaxPlayers      int
	Started         bool
	ActiveSessionID *SessionID // set while a session is playing
	LatestSessionID *SessionID // last session started, kept until reset
	NextSeat        int        // next seat number to hand out
	Players         []RoomPlayer
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GetPlayer returns the member with the given user ID, or nil if not found
func (r *Room) GetPlayer(userID UserID) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

// GetOwner returns the owning member, or nil if none
func (r *Room) GetOwner() *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].IsOwner {
			return &r.Players[i]
		}
	}
	return nil
}

// IsOwner reports whether the user owns the room
func (r *Room) IsOwner(userID UserID) bool {
	p := r.GetPlayer(userID)
	return p != nil && p.IsOwner
}

// IsFull reports whether the room has reached its capacity
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// SeatedPlayers returns a copy of the members ordered by seat
func (r *Room) SeatedPlayers() []RoomPlayer {
	players := make([]RoomPlayer, len(r.Players))
	copy(players, r.Players)
	slices.SortStableFunc(players, func(a, b RoomPlayer) int {
		return cmp.Compare(a.SeatOrder, b.SeatOrder)
	})
	return players
}
