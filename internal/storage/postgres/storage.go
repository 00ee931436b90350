package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/storage"
)

// Storage is a PostgreSQL implementation of the storage interface, built on gorm
type Storage struct {
	db *gorm.DB
}

// Connect opens a gorm connection to the given DSN
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// Open connects to the database and migrates the schema
func Open(dsn string) (*Storage, error) {
	db, err := Connect(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// New wraps an existing gorm connection
func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates or updates every table
func (s *Storage) Migrate() error {
	return s.db.AutoMigrate(allRows()...)
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ storage.Storage = (*Storage)(nil)

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	row := userRow{
		ID:            string(user.ID),
		Username:      user.Username,
		UsernameLower: strings.ToLower(user.Username),
		CreatedAt:     user.CreatedAt,
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrUserNotFound)
	}
	return &model.User{ID: model.UserID(row.ID), Username: row.Username, CreatedAt: row.CreatedAt}, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, "username_lower = ?", strings.ToLower(username)).Error
	if err != nil {
		return nil, notFound(err, model.ErrUserNotFound)
	}
	return &model.User{ID: model.UserID(row.ID), Username: row.Username, CreatedAt: row.CreatedAt}, nil
}

// User stats operations

func (s *Storage) SaveUserStats(ctx context.Context, stats *model.UserStats) error {
	row := userStatsRow{
		UserID:          string(stats.UserID),
		TotalScore:      stats.TotalScore,
		GamesPlayed:     stats.GamesPlayed,
		BestScore:       stats.BestScore,
		Wins:            stats.Wins,
		TotalResponseMs: stats.TotalResponseMs,
		ResponseCount:   stats.ResponseCount,
		UpdatedAt:       stats.UpdatedAt,
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *Storage) GetUserStats(ctx context.Context, userID model.UserID) (*model.UserStats, error) {
	var row userStatsRow
	if err := s.db.WithContext(ctx).First(&row, "user_id = ?", string(userID)).Error; err != nil {
		return nil, notFound(err, model.ErrStatsNotFound)
	}
	return fromUserStatsRow(&row), nil
}

func (s *Storage) ListUserStats(ctx context.Context) ([]*model.UserStats, error) {
	var rows []userStatsRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*model.UserStats, 0, len(rows))
	for i := range rows {
		result = append(result, fromUserStatsRow(&rows[i]))
	}
	return result, nil
}

// In-session set

func (s *Storage) SetPlaying(ctx context.Context, userIDs []model.UserID, playing bool) error {
	if len(userIDs) == 0 {
		return nil
	}
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = string(id)
	}

	db := s.db.WithContext(ctx)
	if !playing {
		return db.Where("user_id IN ?", ids).Delete(&playingUserRow{}).Error
	}

	rows := make([]playingUserRow, len(ids))
	for i, id := range ids {
		rows[i] = playingUserRow{UserID: id}
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (s *Storage) IsPlaying(ctx context.Context, userID model.UserID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&playingUserRow{}).Where("user_id = ?", string(userID)).Count(&count).Error
	return count > 0, err
}

// Room operations

// SaveRoom upserts the room and replaces its member rows in one transaction
func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	row := toRoomRow(room)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", row.ID).Delete(&roomPlayerRow{}).Error; err != nil {
			return err
		}
		if len(row.Players) == 0 {
			return nil
		}
		return tx.Create(&row.Players).Error
	})
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	var row roomRow
	err := s.db.WithContext(ctx).Preload("Players").First(&row, "code = ?", string(code)).Error
	if err != nil {
		return nil, notFound(err, model.ErrRoomNotFound)
	}
	return fromRoomRow(&row), nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&roomRow{}).Where("code = ?", string(code)).Count(&count).Error
	return count > 0, err
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	row, err := toSessionRow(session)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	var row sessionRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrSessionNotFound)
	}
	return fromSessionRow(&row)
}

// DeleteSessionsForRoom cascades through answers, options, rounds and game
// players inside a single transaction
func (s *Storage) DeleteSessionsForRoom(ctx context.Context, roomID model.RoomID) (int, error) {
	var removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessionIDs []string
		if err := tx.Model(&sessionRow{}).Where("room_id = ?", string(roomID)).Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}
		if len(sessionIDs) == 0 {
			return nil
		}

		roundIDs := tx.Model(&roundRow{}).Select("id").Where("session_id IN ?", sessionIDs)
		if err := tx.Where("round_id IN (?)", roundIDs).Delete(&roundOptionRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN ?", sessionIDs).Delete(&answerRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN ?", sessionIDs).Delete(&roundRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN ?", sessionIDs).Delete(&gamePlayerRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", sessionIDs).Delete(&sessionRow{}).Error; err != nil {
			return err
		}
		removed = len(sessionIDs)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete sessions for room %s: %w", roomID, err)
	}
	return removed, nil
}

// Game player operations

func (s *Storage) SaveGamePlayer(ctx context.Context, player *model.GamePlayer) error {
	row := gamePlayerRow{
		SessionID:       string(player.SessionID),
		UserID:          string(player.UserID),
		Username:        player.Username,
		SeatOrder:       player.SeatOrder,
		Score:           player.Score,
		TotalResponseMs: player.TotalResponseMs,
		ResponseCount:   player.ResponseCount,
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *Storage) GetGamePlayer(ctx context.Context, sessionID model.SessionID, userID model.UserID) (*model.GamePlayer, error) {
	var row gamePlayerRow
	err := s.db.WithContext(ctx).
		First(&row, "session_id = ? AND user_id = ?", string(sessionID), string(userID)).Error
	if err != nil {
		return nil, notFound(err, model.ErrPlayerNotInSession)
	}
	return fromGamePlayerRow(&row), nil
}

func (s *Storage) GetGamePlayersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.GamePlayer, error) {
	var rows []gamePlayerRow
	err := s.db.WithContext(ctx).Where("session_id = ?", string(sessionID)).Order("seat_order").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]*model.GamePlayer, 0, len(rows))
	for i := range rows {
		result = append(result, fromGamePlayerRow(&rows[i]))
	}
	return result, nil
}

// Round operations

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	row := toRoundRow(round)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return err
		}
		for i := range row.Options {
			if err := tx.Save(&row.Options[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	var row roundRow
	err := s.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("display_order") }).
		First(&row, "id = ?", string(id)).Error
	if err != nil {
		return nil, notFound(err, model.ErrRoundNotFound)
	}
	return fromRoundRow(&row), nil
}

// Answer operations

func (s *Storage) SaveAnswer(ctx context.Context, answer *model.Answer) error {
	row := answerRow{
		ID:            string(answer.ID),
		SessionID:     string(answer.SessionID),
		RoundID:       string(answer.RoundID),
		UserID:        string(answer.UserID),
		OptionID:      string(answer.OptionID),
		IsCorrect:     answer.IsCorrect,
		ResponseTimeS: answer.ResponseTimeS,
		AnsweredAt:    answer.AnsweredAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Storage) GetAnswersForSession(ctx context.Context, sessionID model.SessionID) ([]*model.Answer, error) {
	var rows []answerRow
	err := s.db.WithContext(ctx).Where("session_id = ?", string(sessionID)).Order("answered_at, id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]*model.Answer, 0, len(rows))
	for i := range rows {
		result = append(result, fromAnswerRow(&rows[i]))
	}
	return result, nil
}

// Chat operations

func (s *Storage) SaveChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	row := chatMessageRow{
		ID:        string(msg.ID),
		RoomID:    string(msg.RoomID),
		UserID:    string(msg.UserID),
		Username:  msg.Username,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Storage) GetRecentChatMessages(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error) {
	query := s.db.WithContext(ctx).Where("room_id = ?", string(roomID)).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []chatMessageRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	slices.Reverse(rows)

	result := make([]*model.ChatMessage, 0, len(rows))
	for i := range rows {
		result = append(result, fromChatMessageRow(&rows[i]))
	}
	return result, nil
}
