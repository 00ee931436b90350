package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface. Every
// value is copied on the way in and on the way out.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	stats         map[model.UserID]*model.UserStats
	playing       map[model.UserID]struct{}
	rooms         map[model.RoomCode]*model.Room
	sessions      map[model.SessionID]*model.GameSession
	gamePlayers   map[gamePlayerKey]*model.GamePlayer
	rounds        map[model.RoundID]*model.Round
	answers       map[model.SessionID][]*model.Answer
	chat          map[model.RoomID][]*model.ChatMessage
}

type gamePlayerKey struct {
	sessionID model.SessionID
	userID    model.UserID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		stats:         make(map[model.UserID]*model.UserStats),
		playing:       make(map[model.UserID]struct{}),
		rooms:         make(map[model.RoomCode]*model.Room),
		sessions:      make(map[model.SessionID]*model.GameSession),
		gamePlayers:   make(map[gamePlayerKey]*model.GamePlayer),
		rounds:        make(map[model.RoundID]*model.Round),
		answers:       make(map[model.SessionID][]*model.Answer),
		chat:          make(map[model.RoomID][]*model.ChatMessage),
	}
}

var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.ID] = &u
	s.usernameIndex[strings.ToLower(user.Username)] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[strings.ToLower(username)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// User stats operations

func (s *Storage) SaveUserStats(ctx context.Context, stats *model.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *stats
	s.stats[stats.UserID] = &st
	return nil
}

func (s *Storage) GetUserStats(ctx context.Context, userID model.UserID) (*model.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[userID]
	if !ok {
		return nil, model.ErrStatsNotFound
	}
	st := *stats
	return &st, nil
}

func (s *Storage) ListUserStats(ctx context.Context) ([]*model.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.UserStats, 0, len(s.stats))
	for _, stats := range s.stats {
		st := *stats
		result = append(result, &st)
	}
	return result, nil
}

// In-session set

func (s *Storage) SetPlaying(ctx context.Context, userIDs []model.UserID, playing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range userIDs {
		if playing {
			s.playing[id] = struct{}{}
		} else {
			delete(s.playing, id)
		}
	}
	return nil
}

func (s *Storage) IsPlaying(ctx context.Context, userID model.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.playing[userID]
	return ok, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = cloneRoom(room)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Storage) DeleteSessionsForRoom(ctx context.Context, roomID model.RoomID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.RoomID != roomID {
			continue
		}
		for key := range s.gamePlayers {
			if key.sessionID == id {
				delete(s.gamePlayers, key)
			}
		}
		for roundID, round := range s.rounds {
			if round.SessionID == id {
				delete(s.rounds, roundID)
			}
		}
		delete(s.answers, id)
		delete(s.sessions, id)
		removed++
	}
	return removed, nil
}

// Game player operations

func (s *Storage) SaveGamePlayer(ctx context.Context, player *model.GamePlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.gamePlayers[gamePlayerKey{sessionID: player.SessionID, userID: player.UserID}] = &p
	return nil
}

func (s *Storage) GetGamePlayer(ctx context.Context, sessionID model.SessionID, userID model.UserID) (*model.GamePlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.gamePlayers[gamePlayerKey{sessionID: sessionID, userID: userID}]
	if !ok {
		return nil, model.ErrPlayerNotInSession
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetGamePlayersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.GamePlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []*model.GamePlayer
	for key, player := range s.gamePlayers {
		if key.sessionID == sessionID {
			p := *player
			players = append(players, &p)
		}
	}
	return players, nil
}

// Round operations

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[round.ID] = cloneRound(round)
	return nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, ok := s.rounds[id]
	if !ok {
		return nil, model.ErrRoundNotFound
	}
	return cloneRound(round), nil
}

// Answer operations

func (s *Storage) SaveAnswer(ctx context.Context, answer *model.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := *answer
	s.answers[answer.SessionID] = append(s.answers[answer.SessionID], &a)
	return nil
}

func (s *Storage) GetAnswersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answers := make([]*model.Answer, 0, len(s.answers[sessionID]))
	for _, answer := range s.answers[sessionID] {
		a := *answer
		answers = append(answers, &a)
	}
	return answers, nil
}

// Chat operations

func (s *Storage) SaveChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *msg
	s.chat[msg.RoomID] = append(s.chat[msg.RoomID], &m)
	return nil
}

func (s *Storage) GetRecentChatMessages(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := s.chat[roomID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	result := make([]*model.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		m := *msg
		result = append(result, &m)
	}
	return result, nil
}

func cloneRoom(room *model.Room) *model.Room {
	r := *room
	r.Players = slices.Clone(room.Players)
	if room.ActiveSessionID != nil {
		id := *room.ActiveSessionID
		r.ActiveSessionID = &id
	}
	if room.LatestSessionID != nil {
		id := *room.LatestSessionID
		r.LatestSessionID = &id
	}
	return &r
}

func cloneSession(session *model.GameSession) *model.GameSession {
	s := *session
	s.Seats = slices.Clone(session.Seats)
	if session.CurrentRoundID != nil {
		id := *session.CurrentRoundID
		s.CurrentRoundID = &id
	}
	if session.FinishedAt != nil {
		t := *session.FinishedAt
		s.FinishedAt = &t
	}
	return &s
}

func cloneRound(round *model.Round) *model.Round {
	r := *round
	r.Options = slices.Clone(round.Options)
	return &r
}
