package sse

import (
	"log/slog"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/game"
)

// ColorLookup resolves colour IDs for round options
type ColorLookup interface {
	Get(id model.ColorID) (model.Color, bool)
}

// Broadcaster turns core results into room events
type Broadcaster struct {
	hubManager *HubManager
	colors     ColorLookup
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, colors ColorLookup, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		colors:     colors,
		logger:     logger.With(slog.String("component", "broadcaster")),
	}
}

// RoomUpdated publishes the seat-ordered player list
func (b *Broadcaster) RoomUpdated(room *model.Room) {
	b.hubManager.Publish(room.Code, RoomUpdatedEvent(room))
}

// RoomReset announces that the room is back in the lobby, then the player list
func (b *Broadcaster) RoomReset(room *model.Room) {
	b.hubManager.Publish(room.Code, model.RoomReset{RoomCode: room.Code})
	b.RoomUpdated(room)
}

func (b *Broadcaster) UserJoined(code model.RoomCode, userID model.UserID, username string) {
	b.hubManager.Publish(code, model.UserJoined{UserID: userID, Username: username})
}

func (b *Broadcaster) UserLeft(code model.RoomCode, userID model.UserID, username string) {
	b.hubManager.Publish(code, model.UserLeft{UserID: userID, Username: username})
}

func (b *Broadcaster) ChatPosted(code model.RoomCode, msg *model.ChatMessage) {
	b.hubManager.Publish(code, model.ChatPosted{
		MessageID: msg.ID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	})
}

func (b *Broadcaster) Typing(code model.RoomCode, userID model.UserID, username string, isTyping bool) {
	b.hubManager.Publish(code, model.Typing{UserID: userID, Username: username, IsTyping: isTyping})
}

// GameStarted publishes the new session followed by the refreshed room
func (b *Broadcaster) GameStarted(room *model.Room, session *model.GameSession) {
	b.hubManager.Publish(room.Code, model.GameStarted{
		SessionID:       session.ID,
		RoundsPerPlayer: session.RoundsPerPlayer,
		Seats:           session.Seats,
	})
	b.RoomUpdated(room)
}

// NewTurn publishes whose turn it is and the round they must answer
func (b *Broadcaster) NewTurn(code model.RoomCode, info *game.RoundInfo) {
	b.hubManager.Publish(code, model.TurnChanged{UserID: info.Player.UserID, Username: info.Player.Username})
	if info.Round != nil {
		b.hubManager.Publish(code, NewRoundEvent(info, b.colors))
	}
}

// NewRound publishes only the round, for a player continuing their turn
func (b *Broadcaster) NewRound(code model.RoomCode, info *game.RoundInfo) {
	b.hubManager.Publish(code, NewRoundEvent(info, b.colors))
}

// Answered publishes the score change and the running scoreboard. A finished
// game also gets its winner and final rows.
func (b *Broadcaster) Answered(code model.RoomCode, result *game.AnswerResult, rows []model.ScoreboardRow) {
	b.hubManager.Publish(code, model.ScoreUpdated{
		UserID:    result.Player.UserID,
		Score:     result.Player.Score,
		Delta:     result.Delta,
		IsCorrect: result.IsCorrect,
	})
	b.hubManager.Publish(code, model.Scoreboard{Rows: rows})

	if result.GameFinished {
		if result.Winner != nil {
			b.hubManager.Publish(code, model.Winner{
				UserID:   result.Winner.UserID,
				Username: result.Winner.Username,
				Score:    result.Winner.Score,
			})
		}
		b.hubManager.Publish(code, model.GameFinished{SessionID: result.SessionID, Rows: rows})
	}
}

// RoomUpdatedEvent builds the player list event for a room
func RoomUpdatedEvent(room *model.Room) model.RoomUpdated {
	seated := room.SeatedPlayers()
	players := make([]model.EventPlayer, len(seated))
	for i, p := range seated {
		players[i] = model.EventPlayer{
			UserID:    p.UserID,
			Username:  p.Username,
			IsOwner:   p.IsOwner,
			SeatOrder: p.SeatOrder,
		}
	}
	return model.RoomUpdated{RoomCode: room.Code, Started: room.Started, Players: players}
}

// NewRoundEvent builds the round event with colour names and hex values
func NewRoundEvent(info *game.RoundInfo, colors ColorLookup) model.NewRound {
	options := make([]model.EventOption, len(info.Round.Options))
	for i, o := range info.Round.Options {
		options[i] = model.EventOption{
			OptionID:  o.ID,
			Order:     o.Order,
			ColorID:   o.ColorID,
			IsCorrect: o.IsCorrect,
		}
		if c, ok := colors.Get(o.ColorID); ok {
			options[i].ColorName = c.Name
			options[i].ColorHex = c.Hex
		}
	}
	return model.NewRound{
		RoundID:         info.Round.ID,
		UserID:          info.Player.UserID,
		Word:            info.Round.Word,
		InkHex:          info.Round.InkHex,
		Options:         options,
		RemainingRounds: info.Remaining,
	}
}
