package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stroopgame/internal/dependencies/mocks"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/catalog"
	"github.com/mcoot/stroopgame/internal/services/lobby"
	"github.com/mcoot/stroopgame/internal/services/roomlock"
	"github.com/mcoot/stroopgame/internal/services/round"
	"github.com/mcoot/stroopgame/internal/services/scoring"
	"github.com/mcoot/stroopgame/internal/services/user"
	"github.com/mcoot/stroopgame/internal/storage/memory"
	"github.com/mcoot/stroopgame/internal/testutil"
)

type recorder struct {
	mu       sync.Mutex
	started  int
	correct  int
	wrong    int
	finished int
}

func (r *recorder) SessionStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recorder) AnswerRecorded(correct bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if correct {
		r.correct++
	} else {
		r.wrong++
	}
}

func (r *recorder) GameFinished() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	users      *user.Service
	lobby      *lobby.Controller
	recorder   *recorder
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	ids := mocks.NewMockIDs()
	locker := roomlock.New()

	s.users = user.New(s.storage, s.clock, ids, logger)
	s.lobby = lobby.NewController(s.storage, s.users, locker, s.clock, s.random, ids, lobby.DefaultConfig(), logger)
	rounds := round.New(s.storage, catalog.Default(), s.random, ids, s.clock)
	scores := scoring.New(s.storage, s.clock, ids)
	s.recorder = &recorder{}
	s.controller = NewController(s.storage, rounds, scores, locker, s.clock, ids, s.recorder, DefaultConfig(), logger)
	s.ctx = context.Background()
}

// setupRoom creates a room seating the named users in order
func (s *ControllerSuite) setupRoom(names ...string) (*model.Room, []*model.User) {
	users := make([]*model.User, len(names))
	for i, name := range names {
		u, err := s.users.Register(s.ctx, name)
		s.Require().NoError(err)
		users[i] = u
	}
	room, err := s.lobby.CreateRoom(s.ctx, users[0].ID)
	s.Require().NoError(err)
	for _, u := range users[1:] {
		room, err = s.lobby.JoinRoom(s.ctx, room.Code, u.ID)
		s.Require().NoError(err)
	}
	return room, users
}

// seatRoom creates a room under code 10000+offset seating existing users in order
func (s *ControllerSuite) seatRoom(offset int, users ...*model.User) *model.Room {
	s.random.QueueIntn(offset)
	room, err := s.lobby.CreateRoom(s.ctx, users[0].ID)
	s.Require().NoError(err)
	for _, u := range users[1:] {
		room, err = s.lobby.JoinRoom(s.ctx, room.Code, u.ID)
		s.Require().NoError(err)
	}
	return room
}

func wrongOption(r *model.Round) *model.RoundOption {
	for i := range r.Options {
		if !r.Options[i].IsCorrect {
			return &r.Options[i]
		}
	}
	return nil
}

// play generates a round for the current player and answers it
func (s *ControllerSuite) play(code model.RoomCode, correct bool, seconds float64) *AnswerResult {
	info, err := s.controller.NextRound(s.ctx, code)
	s.Require().NoError(err)
	option := info.Round.CorrectOption()
	if !correct {
		option = wrongOption(info.Round)
	}
	result, err := s.controller.SubmitAnswer(s.ctx, code, info.Player.UserID, info.Round.ID, option.ID, seconds)
	s.Require().NoError(err)
	return result
}

// End to end

func (s *ControllerSuite) TestTwoPlayersOneRoundEach() {
	room, users := s.setupRoom("p1", "p2")
	p1, p2 := users[0], users[1]

	session, err := s.controller.StartGame(s.ctx, room.Code, p1.ID, 1)
	s.Require().NoError(err)
	s.Equal(p1.ID, session.CurrentPlayer)

	playing, _ := s.users.IsPlaying(s.ctx, p1.ID)
	s.True(playing)

	info, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(p1.ID, info.Player.UserID)
	s.Equal(0, info.Remaining)

	first, err := s.controller.SubmitAnswer(s.ctx, room.Code, p1.ID, info.Round.ID, info.Round.CorrectOption().ID, 0.8)
	s.Require().NoError(err)
	s.True(first.IsCorrect)
	s.Equal(1, first.Delta)
	s.Equal(1, first.Player.Score)
	s.True(first.TurnFinished)
	s.False(first.GameFinished)
	s.Require().NotNil(first.NextPlayer)
	s.Equal(p2.ID, first.NextPlayer.UserID)

	current, err := s.controller.CurrentPlayer(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(p2.ID, current.UserID)

	info, err = s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(p2.ID, info.Player.UserID)

	last, err := s.controller.SubmitAnswer(s.ctx, room.Code, p2.ID, info.Round.ID, wrongOption(info.Round).ID, 1.2)
	s.Require().NoError(err)
	s.False(last.IsCorrect)
	s.Equal(0, last.Delta)
	s.True(last.TurnFinished)
	s.True(last.GameFinished)
	s.Nil(last.NextPlayer)
	s.Require().NotNil(last.Winner)
	s.Equal(p1.ID, last.Winner.UserID)

	rows, err := s.controller.Scoreboard(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(p1.ID, rows[0].UserID)
	s.Equal(1, rows[0].Score)
	s.Equal(1, rows[0].Correct)
	s.Equal(p2.ID, rows[1].UserID)
	s.Equal(0, rows[1].Score)
	s.Equal(1, rows[1].Wrong)

	winner, err := s.controller.Winner(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(p1.ID, winner.UserID)

	for _, u := range users {
		playing, err := s.users.IsPlaying(s.ctx, u.ID)
		s.Require().NoError(err)
		s.False(playing)
	}

	stored, _ := s.lobby.GetRoom(s.ctx, room.Code)
	s.False(stored.Started)
	s.Nil(stored.ActiveSessionID)
	s.NotNil(stored.LatestSessionID)

	stats1, _ := s.storage.GetUserStats(s.ctx, p1.ID)
	s.Equal(1, stats1.Wins)
	s.Equal(1, stats1.GamesPlayed)
	s.Equal(1, stats1.BestScore)
	s.Equal(int64(800), stats1.TotalResponseMs)
	stats2, _ := s.storage.GetUserStats(s.ctx, p2.ID)
	s.Equal(0, stats2.Wins)
	s.Equal(1, stats2.GamesPlayed)

	s.Equal(1, s.recorder.started)
	s.Equal(1, s.recorder.correct)
	s.Equal(1, s.recorder.wrong)
	s.Equal(1, s.recorder.finished)
}

func (s *ControllerSuite) TestTurnOrderFollowsSeats() {
	room, users := s.setupRoom("a", "b", "c")
	const rounds = 2
	_, err := s.controller.StartSession(s.ctx, room.Code, rounds)
	s.Require().NoError(err)

	var last *AnswerResult
	for answered := 0; answered < len(users)*rounds; answered++ {
		current, err := s.controller.CurrentPlayer(s.ctx, room.Code)
		s.Require().NoError(err)
		s.Equal(users[answered/rounds].ID, current.UserID, "after %d answers", answered)

		last = s.play(room.Code, answered%2 == 0, 1)
		s.Equal((answered+1)%rounds == 0, last.TurnFinished)
	}
	s.True(last.GameFinished)

	stored, _ := s.lobby.GetRoom(s.ctx, room.Code)
	answers, err := s.storage.GetAnswersForSession(s.ctx, *stored.LatestSessionID)
	s.Require().NoError(err)
	s.Len(answers, len(users)*rounds)

	_, err = s.controller.CurrentPlayer(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrSessionFinished)
}

func (s *ControllerSuite) TestWinnerTieBrokenByResponseTime() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 3)
	s.Require().NoError(err)

	for range 3 {
		s.play(room.Code, true, 0.9)
	}
	var result *AnswerResult
	for range 3 {
		result = s.play(room.Code, true, 0.85)
	}

	s.Require().True(result.GameFinished)
	s.Equal(users[1].ID, result.Winner.UserID)
	s.Equal(3, result.Winner.Score)
}

// StartSession / StartGame tests

func (s *ControllerSuite) TestStartSessionClampsRoundsPerPlayer() {
	s.Equal(4, s.controller.RoundsPerPlayer(0))
	s.Equal(4, s.controller.RoundsPerPlayer(-3))
	s.Equal(1, s.controller.RoundsPerPlayer(1))
	s.Equal(10, s.controller.RoundsPerPlayer(50))

	room, _ := s.setupRoom("a", "b")
	session, err := s.controller.StartSession(s.ctx, room.Code, 99)
	s.Require().NoError(err)
	s.Equal(10, session.RoundsPerPlayer)
}

func (s *ControllerSuite) TestStartSessionSeatsInJoinOrder() {
	room, users := s.setupRoom("a", "b", "c")
	session, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)

	s.Equal([]model.UserID{users[0].ID, users[1].ID, users[2].ID}, session.Seats)
	s.Equal(0, session.CurrentSeat)
	s.Equal(0, session.RoundsPlayed)
	s.Nil(session.CurrentRoundID)
	s.Equal(model.SessionStatePlaying, session.State)

	players, err := s.storage.GetGamePlayersForSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(players, 3)
}

func (s *ControllerSuite) TestStartSessionForceFinishesPlayingSession() {
	room, _ := s.setupRoom("a", "b")
	first, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)

	second, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	old, err := s.controller.GetSession(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionStateFinished, old.State)
	s.NotNil(old.FinishedAt)

	stored, _ := s.lobby.GetRoom(s.ctx, room.Code)
	s.Equal(second.ID, *stored.ActiveSessionID)
}

func (s *ControllerSuite) TestStartSessionRoomNotFound() {
	_, err := s.controller.StartSession(s.ctx, "99999", 1)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestStartGameRequiresOwner() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartGame(s.ctx, room.Code, users[1].ID, 1)
	s.ErrorIs(err, model.ErrNotOwner)
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ControllerSuite) TestStartGameNeedsMinimumPlayers() {
	room, users := s.setupRoom("a")
	_, err := s.controller.StartGame(s.ctx, room.Code, users[0].ID, 1)
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
	s.ErrorIs(err, model.ErrInvalidState)
}

func (s *ControllerSuite) TestStartGameWhileStarted() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartGame(s.ctx, room.Code, users[0].ID, 1)
	s.Require().NoError(err)

	_, err = s.controller.StartGame(s.ctx, room.Code, users[0].ID, 1)
	s.ErrorIs(err, model.ErrRoomStarted)
}

// A user seated in two lobbies can only play in one of them at a time

func (s *ControllerSuite) TestStartSessionRejectsPlayerBusyElsewhere() {
	first, users := s.setupRoom("a", "b")
	c, err := s.users.Register(s.ctx, "c")
	s.Require().NoError(err)
	second := s.seatRoom(1, users[0], c)

	_, err = s.controller.StartGame(s.ctx, first.Code, users[0].ID, 1)
	s.Require().NoError(err)

	_, err = s.controller.StartGame(s.ctx, second.Code, users[0].ID, 1)
	s.ErrorIs(err, model.ErrUserBusy)
	s.ErrorIs(err, model.ErrInvalidState)

	stored, _ := s.lobby.GetRoom(s.ctx, second.Code)
	s.False(stored.Started)
	s.Nil(stored.ActiveSessionID)
	playing, err := s.users.IsPlaying(s.ctx, c.ID)
	s.Require().NoError(err)
	s.False(playing)
	s.Equal(1, s.recorder.started)

	// Once the first game ends the second room can start
	s.play(first.Code, true, 1)
	s.play(first.Code, true, 1)
	_, err = s.controller.StartGame(s.ctx, second.Code, users[0].ID, 1)
	s.NoError(err)
}

func (s *ControllerSuite) TestConcurrentStartsSeatSharedUserOnce() {
	first, users := s.setupRoom("a", "b")
	c, err := s.users.Register(s.ctx, "c")
	s.Require().NoError(err)
	second := s.seatRoom(1, users[0], c)

	codes := []model.RoomCode{first.Code, second.Code}
	errs := make([]error, len(codes))
	var wg sync.WaitGroup
	for i, code := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.controller.StartSession(s.ctx, code, 1)
		}()
	}
	wg.Wait()

	won := 0
	if errs[0] != nil {
		won = 1
	}
	lost := 1 - won
	s.Require().NoError(errs[won])
	s.Require().ErrorIs(errs[lost], model.ErrUserBusy)
	winner, loser := codes[won], codes[lost]

	// Playing both games back to back accumulates every answer
	s.play(winner, true, 1)
	s.play(winner, true, 1)
	_, err = s.controller.StartSession(s.ctx, loser, 1)
	s.Require().NoError(err)
	s.play(loser, true, 1)
	s.play(loser, true, 1)

	stats, err := s.storage.GetUserStats(s.ctx, users[0].ID)
	s.Require().NoError(err)
	s.Equal(2, stats.TotalScore)
	s.Equal(2, stats.ResponseCount)
	s.Equal(2, stats.GamesPlayed)
	playing, err := s.users.IsPlaying(s.ctx, users[0].ID)
	s.Require().NoError(err)
	s.False(playing)
}

// NextRound tests

func (s *ControllerSuite) TestNextRoundWithoutSession() {
	room, _ := s.setupRoom("a", "b")
	_, err := s.controller.NextRound(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrNoActiveSession)
}

func (s *ControllerSuite) TestNextRoundAfterFinish() {
	room, _ := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)
	s.play(room.Code, true, 1)
	s.play(room.Code, true, 1)

	_, err = s.controller.NextRound(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrSessionFinished)
	s.ErrorIs(err, model.ErrInvalidState)
}

func (s *ControllerSuite) TestNextRoundWhenTurnExhausted() {
	room, _ := s.setupRoom("a", "b")
	session, err := s.controller.StartSession(s.ctx, room.Code, 2)
	s.Require().NoError(err)

	session.RoundsPlayed = 2
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	_, err = s.controller.NextRound(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrTurnExhausted)
}

func (s *ControllerSuite) TestNextRoundReportsRemaining() {
	room, _ := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 3)
	s.Require().NoError(err)

	info, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(2, info.Remaining)
	s.Len(info.Round.Options, 2)

	s.play(room.Code, true, 1)
	info, err = s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(1, info.Remaining)
}

func (s *ControllerSuite) TestNextRoundReplacesUnansweredRound() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)

	stale, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)
	fresh, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.NotEqual(stale.Round.ID, fresh.Round.ID)

	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, stale.Round.ID, stale.Round.CorrectOption().ID, 1)
	s.ErrorIs(err, model.ErrRoundNotActive)

	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, fresh.Round.ID, fresh.Round.CorrectOption().ID, 1)
	s.NoError(err)
}

func (s *ControllerSuite) TestCurrentRound() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 2)
	s.Require().NoError(err)

	info, err := s.controller.CurrentRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Nil(info.Round)
	s.Equal(users[0].ID, info.Player.UserID)

	next, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)

	info, err = s.controller.CurrentRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Require().NotNil(info.Round)
	s.Equal(next.Round.ID, info.Round.ID)
	s.Equal(1, info.Remaining)
}

// SubmitAnswer tests

func (s *ControllerSuite) TestSubmitAnswerOutOfTurnChangesNothing() {
	room, users := s.setupRoom("a", "b")
	session, err := s.controller.StartSession(s.ctx, room.Code, 2)
	s.Require().NoError(err)
	info, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)

	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[1].ID, info.Round.ID, info.Round.CorrectOption().ID, 0.5)
	s.ErrorIs(err, model.ErrNotYourTurn)
	s.ErrorIs(err, model.ErrForbidden)

	stored, err := s.controller.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(0, stored.RoundsPlayed)
	s.Equal(info.Round.ID, *stored.CurrentRoundID)

	for _, u := range users {
		gp, err := s.storage.GetGamePlayer(s.ctx, session.ID, u.ID)
		s.Require().NoError(err)
		s.Zero(gp.Score)
		s.Zero(gp.ResponseCount)
	}
	answers, _ := s.storage.GetAnswersForSession(s.ctx, session.ID)
	s.Empty(answers)
	stats, _ := s.storage.GetUserStats(s.ctx, users[1].ID)
	s.Zero(stats.ResponseCount)
}

func (s *ControllerSuite) TestSubmitAnswerTwiceToSameRound() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 3)
	s.Require().NoError(err)
	info, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)

	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, info.Round.ID, info.Round.CorrectOption().ID, 1)
	s.Require().NoError(err)
	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, info.Round.ID, info.Round.CorrectOption().ID, 1)
	s.ErrorIs(err, model.ErrRoundNotActive)
}

func (s *ControllerSuite) TestSubmitAnswerUnknownOption() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)
	info, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)

	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, info.Round.ID, "not-an-option", 1)
	s.ErrorIs(err, model.ErrOptionNotFound)
	s.ErrorIs(err, model.ErrNotFound)

	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, "not-a-round", info.Round.CorrectOption().ID, 1)
	s.ErrorIs(err, model.ErrRoundNotFound)
}

func (s *ControllerSuite) TestSubmitAnswerNegativeResponseTime() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)
	info, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)

	_, err = s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, info.Round.ID, info.Round.CorrectOption().ID, -0.1)
	s.ErrorIs(err, model.ErrInvalidResponseTime)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ControllerSuite) TestConcurrentSubmissionsAcceptOnlyOne() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)
	info, err := s.controller.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.controller.SubmitAnswer(s.ctx, room.Code, users[0].ID, info.Round.ID, info.Round.CorrectOption().ID, 1)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	gp, err := s.storage.GetGamePlayer(s.ctx, info.SessionID, users[0].ID)
	s.Require().NoError(err)
	s.Equal(1, gp.Score)
	s.Equal(1, gp.ResponseCount)
}

// Scoreboard / Winner tests

func (s *ControllerSuite) TestScoreboardWithoutSession() {
	room, _ := s.setupRoom("a", "b")
	_, err := s.controller.Scoreboard(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestScoreboardMidGame() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 2)
	s.Require().NoError(err)
	s.play(room.Code, true, 0.5)

	rows, err := s.controller.Scoreboard(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(users[0].ID, rows[0].UserID)
	s.Equal(1, rows[0].Rank)
	s.InDelta(500.0, rows[0].AvgResponseMs, 0.001)
	s.Equal(2, rows[1].Rank)
	s.Zero(rows[1].AvgResponseMs)
}

func (s *ControllerSuite) TestWinnerWhilePlaying() {
	room, _ := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)

	_, err = s.controller.Winner(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrSessionNotFinished)
}

// Reset interplay

func (s *ControllerSuite) TestResetAfterGameKeepsLifetimeStats() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 1)
	s.Require().NoError(err)
	s.play(room.Code, true, 1)
	s.play(room.Code, false, 1)

	stored, _ := s.lobby.GetRoom(s.ctx, room.Code)
	sessionID := *stored.LatestSessionID

	_, err = s.lobby.ResetRoom(s.ctx, room.Code)
	s.Require().NoError(err)

	answers, _ := s.storage.GetAnswersForSession(s.ctx, sessionID)
	s.Empty(answers)
	_, err = s.controller.Scoreboard(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrSessionNotFound)

	stats, err := s.storage.GetUserStats(s.ctx, users[0].ID)
	s.Require().NoError(err)
	s.Equal(1, stats.Wins)
	s.Equal(1, stats.TotalScore)

	// The room can host a new game straight away
	_, err = s.controller.StartGame(s.ctx, room.Code, users[0].ID, 1)
	s.NoError(err)
}

func (s *ControllerSuite) TestResetMidGameReleasesPlayers() {
	room, users := s.setupRoom("a", "b")
	_, err := s.controller.StartSession(s.ctx, room.Code, 2)
	s.Require().NoError(err)
	s.play(room.Code, true, 1)

	_, err = s.lobby.ResetRoom(s.ctx, room.Code)
	s.Require().NoError(err)

	for _, u := range users {
		playing, err := s.users.IsPlaying(s.ctx, u.ID)
		s.Require().NoError(err)
		s.False(playing)
	}
	_, err = s.controller.NextRound(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrNoActiveSession)
}
