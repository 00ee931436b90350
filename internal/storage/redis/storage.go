package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, usernameIndexKey(user.Username), string(user.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return getJSON[model.User](ctx, s.client, userKey(id), model.ErrUserNotFound)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

// User stats operations

func (s *Storage) SaveUserStats(ctx context.Context, stats *model.UserStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userStatsKey(stats.UserID), data, 0)
	pipe.SAdd(ctx, statsIndexKey(), string(stats.UserID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUserStats(ctx context.Context, userID model.UserID) (*model.UserStats, error) {
	return getJSON[model.UserStats](ctx, s.client, userStatsKey(userID), model.ErrStatsNotFound)
}

func (s *Storage) ListUserStats(ctx context.Context) ([]*model.UserStats, error) {
	ids, err := s.client.SMembers(ctx, statsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userStatsKey(model.UserID(id))
	}
	return mgetJSON[model.UserStats](ctx, s.client, keys)
}

// In-session set

func (s *Storage) SetPlaying(ctx context.Context, userIDs []model.UserID, playing bool) error {
	if len(userIDs) == 0 {
		return nil
	}
	members := make([]any, len(userIDs))
	for i, id := range userIDs {
		members[i] = string(id)
	}
	if playing {
		return s.client.SAdd(ctx, playingKey(), members...).Err()
	}
	return s.client.SRem(ctx, playingKey(), members...).Err()
}

func (s *Storage) IsPlaying(ctx context.Context, userID model.UserID) (bool, error) {
	return s.client.SIsMember(ctx, playingKey(), string(userID)).Result()
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roomKey(room.Code), data, s.cfg.RoomTTL).Err()
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return getJSON[model.Room](ctx, s.client, roomKey(code), model.ErrRoomNotFound)
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	indexKey := sessionsForRoomIndexKey(session.RoomID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, indexKey, string(session.ID))
	pipe.Expire(ctx, indexKey, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	return getJSON[model.GameSession](ctx, s.client, sessionKey(id), model.ErrSessionNotFound)
}

// DeleteSessionsForRoom collects the keys of every session of the room and
// removes them in a single MULTI/EXEC block.
func (s *Storage) DeleteSessionsForRoom(ctx context.Context, roomID model.RoomID) (int, error) {
	roomIndex := sessionsForRoomIndexKey(roomID)

	sessionIDs, err := s.client.SMembers(ctx, roomIndex).Result()
	if err != nil {
		return 0, err
	}

	keys := []string{roomIndex}
	for _, raw := range sessionIDs {
		id := model.SessionID(raw)
		playersIndex := gamePlayersForSessionIndexKey(id)
		roundsIndex := roundsForSessionIndexKey(id)

		playerKeys, err := s.client.SMembers(ctx, playersIndex).Result()
		if err != nil {
			return 0, err
		}
		roundKeys, err := s.client.SMembers(ctx, roundsIndex).Result()
		if err != nil {
			return 0, err
		}

		keys = append(keys, sessionKey(id), playersIndex, roundsIndex, answersKey(id))
		keys = append(keys, playerKeys...)
		keys = append(keys, roundKeys...)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete sessions for room %s: %w", roomID, err)
	}
	return len(sessionIDs), nil
}

// Game player operations

func (s *Storage) SaveGamePlayer(ctx context.Context, player *model.GamePlayer) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	key := gamePlayerKey(player.SessionID, player.UserID)
	indexKey := gamePlayersForSessionIndexKey(player.SessionID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGamePlayer(ctx context.Context, sessionID model.SessionID, userID model.UserID) (*model.GamePlayer, error) {
	return getJSON[model.GamePlayer](ctx, s.client, gamePlayerKey(sessionID, userID), model.ErrPlayerNotInSession)
}

func (s *Storage) GetGamePlayersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.GamePlayer, error) {
	keys, err := s.client.SMembers(ctx, gamePlayersForSessionIndexKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	return mgetJSON[model.GamePlayer](ctx, s.client, keys)
}

// Round operations

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return err
	}

	key := roundKey(round.ID)
	indexKey := roundsForSessionIndexKey(round.SessionID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	return getJSON[model.Round](ctx, s.client, roundKey(id), model.ErrRoundNotFound)
}

// Answer operations

func (s *Storage) SaveAnswer(ctx context.Context, answer *model.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}

	key := answersKey(answer.SessionID)

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAnswersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.Answer, error) {
	values, err := s.client.LRange(ctx, answersKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Answer](values)
}

// Chat operations

func (s *Storage) SaveChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := chatKey(msg.RoomID)

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.cfg.ChatHistoryLimit > 0 {
		pipe.LTrim(ctx, key, -s.cfg.ChatHistoryLimit, -1)
	}
	pipe.Expire(ctx, key, s.cfg.ChatTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRecentChatMessages(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	values, err := s.client.LRange(ctx, chatKey(roomID), start, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeAll[model.ChatMessage](values)
}

func getJSON[T any](ctx context.Context, client *redis.Client, key string, notFound error) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// mgetJSON fetches keys with one MGET. Expired or undecodable entries are skipped.
func mgetJSON[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*T, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			continue
		}
		result = append(result, &v)
	}
	return result, nil
}

func decodeAll[T any](values []string) ([]*T, error) {
	result := make([]*T, 0, len(values))
	for _, val := range values {
		var v T
		if err := json.Unmarshal([]byte(val), &v); err != nil {
			return nil, err
		}
		result = append(result, &v)
	}
	return result, nil
}
