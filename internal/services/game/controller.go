package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/mcoot/stroopgame/internal/dependencies/clock"
	"github.com/mcoot/stroopgame/internal/dependencies/ids"
	"github.com/mcoot/stroopgame/internal/metrics"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/services/roomlock"
	"github.com/mcoot/stroopgame/internal/services/round"
	"github.com/mcoot/stroopgame/internal/services/scoring"
	"github.com/mcoot/stroopgame/internal/storage"
)

// Config bounds the rounds each player plays per turn
type Config struct {
	MinRoundsPerPlayer     int
	MaxRoundsPerPlayer     int
	DefaultRoundsPerPlayer int
}

// DefaultConfig returns the standard 1..10 rounds policy with 4 by default
func DefaultConfig() Config {
	return Config{
		MinRoundsPerPlayer:     1,
		MaxRoundsPerPlayer:     10,
		DefaultRoundsPerPlayer: 4,
	}
}

// PlayerRef names a seated player
type PlayerRef struct {
	UserID   model.UserID
	Username string
}

// RoundInfo is the active round of a session together with whose turn it is
type RoundInfo struct {
	SessionID model.SessionID
	Round     *model.Round // nil when no round is in play
	Player    PlayerRef
	Remaining int
}

// AnswerResult reports what an answer changed
type AnswerResult struct {
	SessionID    model.SessionID
	RoundID      model.RoundID
	Player       *model.GamePlayer
	Delta        int
	IsCorrect    bool
	TurnFinished bool
	GameFinished bool
	NextPlayer   *PlayerRef        // set when the turn rotated to another seat
	Winner       *model.GamePlayer // set when the game finished
}

// Controller is the turn-rotation state machine. Every mutating operation
// runs inside the room's critical section.
type Controller struct {
	// seating spans the busy check and the in-session write at session start.
	// A user plays in at most one session, so their lifetime stats are only
	// ever written under that one room's lock.
	seating sync.Mutex

	storage storage.Storage
	rounds  round.ServiceInterface
	scoring *scoring.Service
	locker  *roomlock.Locker
	clock   clock.Clock
	ids     ids.Generator
	metrics metrics.GameRecorder
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	rounds round.ServiceInterface,
	scoring *scoring.Service,
	locker *roomlock.Locker,
	clock clock.Clock,
	ids ids.Generator,
	recorder metrics.GameRecorder,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Controller{
		storage: storage,
		rounds:  rounds,
		scoring: scoring,
		locker:  locker,
		clock:   clock,
		ids:     ids,
		metrics: recorder,
		cfg:     cfg,
		logger:  logger,
	}
}

// RoundsPerPlayer applies the default to a non-positive value and clamps the
// result into the configured range
func (c *Controller) RoundsPerPlayer(n int) int {
	if n <= 0 {
		n = c.cfg.DefaultRoundsPerPlayer
	}
	return min(max(n, c.cfg.MinRoundsPerPlayer), c.cfg.MaxRoundsPerPlayer)
}

// StartSession creates a playing session over the room's seat-ordered
// membership. A session still playing in the room is force-finished first.
func (c *Controller) StartSession(ctx context.Context, code model.RoomCode, roundsPerPlayer int) (*model.GameSession, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.startSession(ctx, room, roundsPerPlayer)
}

// StartGame is the owner-initiated start: the requester must own the room and
// the room must be able to start
func (c *Controller) StartGame(ctx context.Context, code model.RoomCode, requester model.UserID, roundsPerPlayer int) (*model.GameSession, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if !room.IsOwner(requester) {
		return nil, model.ErrNotOwner
	}
	if !lobby.CanStart(room) {
		if room.Started {
			return nil, model.ErrRoomStarted
		}
		return nil, model.ErrNotEnoughPlayers
	}
	return c.startSession(ctx, room, roundsPerPlayer)
}

func (c *Controller) startSession(ctx context.Context, room *model.Room, roundsPerPlayer int) (*model.GameSession, error) {
	players := room.SeatedPlayers()
	if len(players) == 0 {
		return nil, model.ErrNoPlayers
	}
	seats := make([]model.UserID, len(players))
	for i, p := range players {
		seats[i] = p.UserID
	}

	c.seating.Lock()
	defer c.seating.Unlock()

	if err := c.ensureAvailable(ctx, room, seats); err != nil {
		return nil, err
	}

	if room.ActiveSessionID != nil {
		if err := c.forceFinish(ctx, room, *room.ActiveSessionID); err != nil {
			return nil, err
		}
	}

	now := c.clock.Now()

	session := &model.GameSession{
		ID:              model.SessionID(c.ids.NewID()),
		RoomID:          room.ID,
		State:           model.SessionStatePlaying,
		RoundsPerPlayer: c.RoundsPerPlayer(roundsPerPlayer),
		Seats:           seats,
		CurrentSeat:     0,
		CurrentPlayer:   seats[0],
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	for i, p := range players {
		gp := &model.GamePlayer{
			SessionID: session.ID,
			UserID:    p.UserID,
			Username:  p.Username,
			SeatOrder: i,
		}
		if err := c.storage.SaveGamePlayer(ctx, gp); err != nil {
			return nil, err
		}
		if _, err := c.scoring.EnsureStats(ctx, p.UserID); err != nil {
			return nil, err
		}
	}

	if err := c.storage.SetPlaying(ctx, seats, true); err != nil {
		return nil, err
	}

	room.Started = true
	room.ActiveSessionID = &session.ID
	room.LatestSessionID = &session.ID
	room.UpdatedAt = now
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.metrics.SessionStarted()
	c.logger.Info("session started",
		slog.String("room_code", string(room.Code)),
		slog.String("session_id", string(session.ID)),
		slog.Int("players", len(seats)),
		slog.Int("rounds_per_player", session.RoundsPerPlayer),
	)
	return session, nil
}

// ensureAvailable fails with ErrUserBusy when a seated user is already playing
// in another room. Players of the room's own playing session are fine, that
// session is about to be force-finished.
func (c *Controller) ensureAvailable(ctx context.Context, room *model.Room, seats []model.UserID) error {
	own := make(map[model.UserID]bool)
	if room.ActiveSessionID != nil {
		active, err := c.storage.GetSession(ctx, *room.ActiveSessionID)
		if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			return err
		}
		if err == nil && active.IsPlaying() {
			for _, id := range active.Seats {
				own[id] = true
			}
		}
	}

	for _, id := range seats {
		if own[id] {
			continue
		}
		playing, err := c.storage.IsPlaying(ctx, id)
		if err != nil {
			return err
		}
		if playing {
			return fmt.Errorf("user %s: %w", id, model.ErrUserBusy)
		}
	}
	return nil
}

// forceFinish ends a playing session without crediting anyone
func (c *Controller) forceFinish(ctx context.Context, room *model.Room, sessionID model.SessionID) error {
	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.IsPlaying() {
		return nil
	}

	now := c.clock.Now()
	session.State = model.SessionStateFinished
	session.CurrentRoundID = nil
	session.FinishedAt = &now
	session.UpdatedAt = now
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}
	if err := c.storage.SetPlaying(ctx, session.Seats, false); err != nil {
		return err
	}

	c.logger.Warn("session force-finished",
		slog.String("room_code", string(room.Code)),
		slog.String("session_id", string(session.ID)),
	)
	return nil
}

// activeSession loads the room's playing session
func (c *Controller) activeSession(ctx context.Context, code model.RoomCode) (*model.Room, *model.GameSession, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if room.ActiveSessionID == nil {
		if room.LatestSessionID != nil {
			return nil, nil, model.ErrSessionFinished
		}
		return nil, nil, model.ErrNoActiveSession
	}
	session, err := c.storage.GetSession(ctx, *room.ActiveSessionID)
	if err != nil {
		return nil, nil, err
	}
	if !session.IsPlaying() {
		return nil, nil, model.ErrSessionFinished
	}
	return room, session, nil
}

// latestSession loads the room's most recent session, playing or finished
func (c *Controller) latestSession(ctx context.Context, code model.RoomCode) (*model.GameSession, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.LatestSessionID == nil {
		return nil, model.ErrSessionNotFound
	}
	return c.storage.GetSession(ctx, *room.LatestSessionID)
}

func (c *Controller) playerRef(ctx context.Context, sessionID model.SessionID, userID model.UserID) (PlayerRef, error) {
	gp, err := c.storage.GetGamePlayer(ctx, sessionID, userID)
	if err != nil {
		return PlayerRef{}, err
	}
	return PlayerRef{UserID: gp.UserID, Username: gp.Username}, nil
}

// NextRound generates a round for the current player and makes it the
// session's current round, replacing any unanswered one
func (c *Controller) NextRound(ctx context.Context, code model.RoomCode) (*RoundInfo, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	_, session, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.TurnExhausted() {
		return nil, model.ErrTurnExhausted
	}

	player, err := c.playerRef(ctx, session.ID, session.CurrentPlayer)
	if err != nil {
		return nil, err
	}

	rnd, err := c.rounds.CreateRound(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	session.CurrentRoundID = &rnd.ID
	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Debug("round generated",
		slog.String("room_code", string(code)),
		slog.String("round_id", string(rnd.ID)),
		slog.String("user_id", string(player.UserID)),
	)
	return &RoundInfo{
		SessionID: session.ID,
		Round:     rnd,
		Player:    player,
		Remaining: session.RemainingRounds(),
	}, nil
}

// CurrentRound returns the round in play, if any, for clients catching up
// mid-turn
func (c *Controller) CurrentRound(ctx context.Context, code model.RoomCode) (*RoundInfo, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	_, session, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	player, err := c.playerRef(ctx, session.ID, session.CurrentPlayer)
	if err != nil {
		return nil, err
	}

	info := &RoundInfo{
		SessionID: session.ID,
		Player:    player,
		Remaining: session.RemainingRounds(),
	}
	if session.CurrentRoundID != nil {
		rnd, err := c.rounds.GetRound(ctx, *session.CurrentRoundID)
		if err != nil {
			return nil, err
		}
		info.Round = rnd
	}
	return info, nil
}

// SubmitAnswer records the current player's answer to the current round,
// rotating the turn or finishing the game as the round count dictates
func (c *Controller) SubmitAnswer(
	ctx context.Context,
	code model.RoomCode,
	userID model.UserID,
	roundID model.RoundID,
	optionID model.OptionID,
	responseTimeS float64,
) (*AnswerResult, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	room, session, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.CurrentPlayer != userID {
		return nil, model.ErrNotYourTurn
	}
	if responseTimeS < 0 || math.IsNaN(responseTimeS) || math.IsInf(responseTimeS, 0) {
		return nil, model.ErrInvalidResponseTime
	}

	rnd, option, err := c.rounds.FindOption(ctx, roundID, optionID)
	if err != nil {
		return nil, err
	}
	if rnd.SessionID != session.ID || session.CurrentRoundID == nil || *session.CurrentRoundID != roundID {
		return nil, model.ErrRoundNotActive
	}

	player, delta, err := c.scoring.RecordAnswer(ctx, scoring.AnswerInput{
		SessionID:     session.ID,
		RoundID:       roundID,
		UserID:        userID,
		OptionID:      optionID,
		IsCorrect:     option.IsCorrect,
		ResponseTimeS: responseTimeS,
	})
	if err != nil {
		return nil, err
	}
	c.metrics.AnswerRecorded(option.IsCorrect)

	now := c.clock.Now()
	session.RoundsPlayed++
	session.CurrentRoundID = nil
	session.UpdatedAt = now

	result := &AnswerResult{
		SessionID: session.ID,
		RoundID:   roundID,
		Player:    player,
		Delta:     delta,
		IsCorrect: option.IsCorrect,
	}

	if session.TurnExhausted() {
		result.TurnFinished = true
		if session.HasNextSeat() {
			session.CurrentSeat++
			session.CurrentPlayer = session.Seats[session.CurrentSeat]
			session.RoundsPlayed = 0

			next, err := c.playerRef(ctx, session.ID, session.CurrentPlayer)
			if err != nil {
				return nil, err
			}
			result.NextPlayer = &next

			c.logger.Info("turn rotated",
				slog.String("room_code", string(code)),
				slog.String("session_id", string(session.ID)),
				slog.String("user_id", string(next.UserID)),
				slog.Int("seat", session.CurrentSeat),
			)
		} else {
			session.State = model.SessionStateFinished
			session.FinishedAt = &now
			result.GameFinished = true
		}
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	if result.GameFinished {
		winner, err := c.finishSession(ctx, room, session)
		if err != nil {
			return nil, err
		}
		result.Winner = winner
	}

	return result, nil
}

// finishSession finalizes lifetime stats, releases the players and returns the
// room to the lobby
func (c *Controller) finishSession(ctx context.Context, room *model.Room, session *model.GameSession) (*model.GamePlayer, error) {
	winner, err := c.scoring.FinalizeSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := c.storage.SetPlaying(ctx, session.Seats, false); err != nil {
		return nil, err
	}

	room.Started = false
	room.ActiveSessionID = nil
	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.metrics.GameFinished()
	attrs := []any{
		slog.String("room_code", string(room.Code)),
		slog.String("session_id", string(session.ID)),
	}
	if winner != nil {
		attrs = append(attrs, slog.String("winner_id", string(winner.UserID)), slog.Int("winner_score", winner.Score))
	}
	c.logger.Info("game finished", attrs...)
	return winner, nil
}

// Scoreboard ranks the players of the room's latest session
func (c *Controller) Scoreboard(ctx context.Context, code model.RoomCode) ([]model.ScoreboardRow, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	session, err := c.latestSession(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.scoring.Scoreboard(ctx, session.ID)
}

// Winner returns the winner of the room's latest session once it has finished
func (c *Controller) Winner(ctx context.Context, code model.RoomCode) (*model.GamePlayer, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	session, err := c.latestSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.IsPlaying() {
		return nil, model.ErrSessionNotFinished
	}
	players, err := c.storage.GetGamePlayersForSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	winner := scoring.RankWinner(players)
	if winner == nil {
		return nil, model.ErrPlayerNotInSession
	}
	return winner, nil
}

// CurrentPlayer returns whose turn it is in the room's playing session
func (c *Controller) CurrentPlayer(ctx context.Context, code model.RoomCode) (*PlayerRef, error) {
	unlock := c.locker.Lock(code)
	defer unlock()

	_, session, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	ref, err := c.playerRef(ctx, session.ID, session.CurrentPlayer)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetSession retrieves a session by ID
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	return c.storage.GetSession(ctx, id)
}

// Interface for dependency injection
type ControllerInterface interface {
	RoundsPerPlayer(n int) int
	StartSession(ctx context.Context, code model.RoomCode, roundsPerPlayer int) (*model.GameSession, error)
	StartGame(ctx context.Context, code model.RoomCode, requester model.UserID, roundsPerPlayer int) (*model.GameSession, error)
	NextRound(ctx context.Context, code model.RoomCode) (*RoundInfo, error)
	CurrentRound(ctx context.Context, code model.RoomCode) (*RoundInfo, error)
	SubmitAnswer(ctx context.Context, code model.RoomCode, userID model.UserID, roundID model.RoundID, optionID model.OptionID, responseTimeS float64) (*AnswerResult, error)
	Scoreboard(ctx context.Context, code model.RoomCode) ([]model.ScoreboardRow, error)
	Winner(ctx context.Context, code model.RoomCode) (*model.GamePlayer, error)
	CurrentPlayer(ctx context.Context, code model.RoomCode) (*PlayerRef, error)
	GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error)
}

var _ ControllerInterface = (*Controller)(nil)
