package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stroopgame/internal/dependencies/mocks"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/storage/memory"
	"github.com/mcoot/stroopgame/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, mocks.NewMockIDs(), testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.storage.SaveRoom(s.ctx, &model.Room{
		ID:         "room-1",
		Code:       "12345",
		CreatorID:  "alice",
		MinPlayers: 2,
		MaxPlayers: 4,
		Players: []model.RoomPlayer{
			{UserID: "alice", Username: "Alice", IsOwner: true},
		},
	}))
}

func (s *ServiceSuite) TestPostStoresTrimmedMessage() {
	msg, err := s.service.Post(s.ctx, "12345", "alice", "  hello  ")
	s.Require().NoError(err)
	s.Equal("hello", msg.Text)
	s.Equal("Alice", msg.Username)
	s.Equal(model.RoomID("room-1"), msg.RoomID)

	recent, err := s.service.Recent(s.ctx, "12345", 0)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(msg.ID, recent[0].ID)
}

func (s *ServiceSuite) TestPostTruncatesLongText() {
	msg, err := s.service.Post(s.ctx, "12345", "alice", strings.Repeat("é", MaxMessageLength+20))
	s.Require().NoError(err)
	s.Equal(MaxMessageLength, len([]rune(msg.Text)))
}

func (s *ServiceSuite) TestPostEmpty() {
	_, err := s.service.Post(s.ctx, "12345", "alice", "   ")
	s.ErrorIs(err, model.ErrEmptyMessage)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ServiceSuite) TestPostFromNonMember() {
	_, err := s.service.Post(s.ctx, "12345", "mallory", "hi")
	s.ErrorIs(err, model.ErrNotInRoom)
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestPostRoomNotFound() {
	_, err := s.service.Post(s.ctx, "99999", "alice", "hi")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestRecentReturnsLatestOldestFirst() {
	for _, text := range []string{"one", "two", "three"} {
		_, err := s.service.Post(s.ctx, "12345", "alice", text)
		s.Require().NoError(err)
		s.clock.Advance(time.Second)
	}

	recent, err := s.service.Recent(s.ctx, "12345", 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("two", recent[0].Text)
	s.Equal("three", recent[1].Text)
}

func (s *ServiceSuite) TestRecentRoomNotFound() {
	_, err := s.service.Recent(s.ctx, "99999", 10)
	s.ErrorIs(err, model.ErrRoomNotFound)
}
