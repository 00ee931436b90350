package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/web/sse"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(name string) *model.User {
	u, err := s.app.UserService.Register(s.ctx, name)
	s.Require().NoError(err)
	return u
}

func (s *IntegrationSuite) correctOption(r *model.Round) model.OptionID {
	opt := r.CorrectOption()
	s.Require().NotNil(opt)
	return opt.ID
}

func (s *IntegrationSuite) wrongOption(r *model.Round) model.OptionID {
	for _, o := range r.Options {
		if !o.IsCorrect {
			return o.ID
		}
	}
	s.FailNow("round has no wrong option")
	return ""
}

// Test: Complete game flow from room creation to lifetime stats
func (s *IntegrationSuite) TestCompleteGameFlow() {
	alice := s.register("alice")
	bob := s.register("bob")

	// Step 1: Create a room and join it
	room, err := s.app.LobbyController.CreateRoom(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomCode("10000"), room.Code)

	room, err = s.app.LobbyController.JoinRoom(s.ctx, room.Code, bob.ID)
	s.Require().NoError(err)
	s.Len(room.Players, 2)

	// Step 2: Start with two rounds each
	session, err := s.app.GameController.StartGame(s.ctx, room.Code, alice.ID, 2)
	s.Require().NoError(err)
	s.Equal([]model.UserID{alice.ID, bob.ID}, session.Seats)

	playing, err := s.app.UserService.IsPlaying(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.True(playing)

	// Step 3: Alice answers both correctly, Bob gets one wrong
	plan := []struct {
		user    model.UserID
		correct bool
	}{
		{alice.ID, true},
		{alice.ID, true},
		{bob.ID, true},
		{bob.ID, false},
	}
	var last *model.GamePlayer
	for i, step := range plan {
		info, err := s.app.GameController.NextRound(s.ctx, room.Code)
		s.Require().NoError(err)
		s.Equal(step.user, info.Player.UserID, "answer %d", i)

		option := s.wrongOption(info.Round)
		if step.correct {
			option = s.correctOption(info.Round)
		}
		s.app.MockClock.Advance(time.Second)
		result, err := s.app.GameController.SubmitAnswer(s.ctx, room.Code, step.user, info.Round.ID, option, 0.5)
		s.Require().NoError(err)
		s.Equal(step.correct, result.IsCorrect)
		s.Equal(i == len(plan)-1, result.GameFinished)
		if result.GameFinished {
			last = result.Winner
		}
	}

	// Step 4: Verify winner and scoreboard
	s.Require().NotNil(last)
	s.Equal(alice.ID, last.UserID)

	winner, err := s.app.GameController.Winner(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(alice.ID, winner.UserID)
	s.Equal(2, winner.Score)

	rows, err := s.app.GameController.Scoreboard(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(alice.ID, rows[0].UserID)
	s.Equal(1, rows[1].Correct)
	s.Equal(1, rows[1].Wrong)

	// Step 5: Lifetime stats and leaderboard
	aliceStats, err := s.app.ScoringService.UserStats(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(1, aliceStats.GamesPlayed)
	s.Equal(1, aliceStats.Wins)
	s.Equal(2, aliceStats.BestScore)
	s.Equal(int64(1000), aliceStats.TotalResponseMs)

	board, err := s.app.ScoringService.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(board, 2)
	s.Equal(alice.ID, board[0].UserID)

	playing, err = s.app.UserService.IsPlaying(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.False(playing)

	// Step 6: The room can be reset and played again
	room, err = s.app.LobbyController.ResetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	s.False(room.Started)
	s.Nil(room.LatestSessionID)

	_, err = s.app.GameController.StartGame(s.ctx, room.Code, alice.ID, 1)
	s.NoError(err)
}

// Test: Broadcaster events reach hub subscribers in order
func (s *IntegrationSuite) TestBroadcastGameStart() {
	alice := s.register("alice")
	bob := s.register("bob")

	room, err := s.app.LobbyController.CreateRoom(s.ctx, alice.ID)
	s.Require().NoError(err)
	room, err = s.app.LobbyController.JoinRoom(s.ctx, room.Code, bob.ID)
	s.Require().NoError(err)

	hub := s.app.HubManager.GetOrCreateHub(room.Code)
	client := sse.NewClient(hub, bob.ID, sse.TransportSSE)
	s.Require().True(hub.Register(client))
	s.Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	session, err := s.app.GameController.StartGame(s.ctx, room.Code, alice.ID, 1)
	s.Require().NoError(err)
	room, err = s.app.LobbyController.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	s.app.Broadcaster.GameStarted(room, session)

	info, err := s.app.GameController.NextRound(s.ctx, room.Code)
	s.Require().NoError(err)
	s.app.Broadcaster.NewTurn(room.Code, info)

	var events []model.EventType
	for range 4 {
		select {
		case msg := <-client.Messages():
			events = append(events, msg.Event)
		case <-time.After(time.Second):
			s.FailNow("timed out waiting for event", "got %v", events)
		}
	}
	s.Equal([]model.EventType{
		model.EventGameStarted,
		model.EventRoomUpdated,
		model.EventTurnChanged,
		model.EventNewRound,
	}, events)
}

// Test: Chat history is scoped to room members
func (s *IntegrationSuite) TestChat() {
	alice := s.register("alice")
	bob := s.register("bob")

	room, err := s.app.LobbyController.CreateRoom(s.ctx, alice.ID)
	s.Require().NoError(err)

	_, err = s.app.ChatService.Post(s.ctx, room.Code, bob.ID, "hi")
	s.ErrorIs(err, model.ErrNotInRoom)

	_, err = s.app.ChatService.Post(s.ctx, room.Code, alice.ID, "  hello  ")
	s.Require().NoError(err)

	msgs, err := s.app.ChatService.Recent(s.ctx, room.Code, 0)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal("hello", msgs[0].Text)
	s.Equal("alice", msgs[0].Username)
}

func (s *IntegrationSuite) TestCloseReleasesHubs() {
	alice := s.register("alice")
	room, err := s.app.LobbyController.CreateRoom(s.ctx, alice.ID)
	s.Require().NoError(err)

	hub := s.app.HubManager.GetOrCreateHub(room.Code)
	client := sse.NewClient(hub, alice.ID, sse.TransportSSE)
	s.Require().True(hub.Register(client))

	s.Require().NoError(s.app.Close())

	s.Eventually(func() bool {
		select {
		case _, ok := <-client.Messages():
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
