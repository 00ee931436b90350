package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/mcoot/stroopgame/internal/model"
)

type userRow struct {
	ID            string    `gorm:"primaryKey"`
	Username      string    `gorm:"not null"`
	UsernameLower string    `gorm:"not null;uniqueIndex"`
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
}

func (userRow) TableName() string {
	return "users"
}

type userStatsRow struct {
	UserID          string `gorm:"primaryKey"`
	TotalScore      int
	GamesPlayed     int
	BestScore       int
	Wins            int
	TotalResponseMs int64
	ResponseCount   int
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (userStatsRow) TableName() string {
	return "user_stats"
}

type playingUserRow struct {
	UserID string `gorm:"primaryKey"`
}

func (playingUserRow) TableName() string {
	return "playing_users"
}

type roomRow struct {
	ID              string `gorm:"primaryKey"`
	Code            string `gorm:"not null;uniqueIndex"`
	CreatorID       string `gorm:"not null"`
	MinPlayers      int
	MaxPlayers      int
	Started         bool
	ActiveSessionID *string
	LatestSessionID *string
	NextSeat        int
	CreatedAt       time.Time       `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime:false"`
	Players         []roomPlayerRow `gorm:"foreignKey:RoomID"`
}

func (roomRow) TableName() string {
	return "rooms"
}

type roomPlayerRow struct {
	RoomID    string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	Username  string
	IsOwner   bool
	SeatOrder int
	JoinedAt  time.Time
}

func (roomPlayerRow) TableName() string {
	return "room_players"
}

type sessionRow struct {
	ID              string `gorm:"primaryKey"`
	RoomID          string `gorm:"not null;index"`
	State           string `gorm:"not null"`
	RoundsPerPlayer int
	Seats           datatypes.JSON `gorm:"type:jsonb"`
	CurrentSeat     int
	CurrentPlayer   string
	RoundsPlayed    int
	CurrentRoundID  *string
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
	FinishedAt      *time.Time
}

func (sessionRow) TableName() string {
	return "game_sessions"
}

type gamePlayerRow struct {
	SessionID       string `gorm:"primaryKey"`
	UserID          string `gorm:"primaryKey"`
	Username        string
	SeatOrder       int
	Score           int
	TotalResponseMs int64
	ResponseCount   int
}

func (gamePlayerRow) TableName() string {
	return "game_players"
}

type roundRow struct {
	ID        string `gorm:"primaryKey"`
	SessionID string `gorm:"not null;index"`
	Word      string
	InkHex    string
	CreatedAt time.Time        `gorm:"autoCreateTime:false"`
	Options   []roundOptionRow `gorm:"foreignKey:RoundID"`
}

func (roundRow) TableName() string {
	return "rounds"
}

type roundOptionRow struct {
	ID           string `gorm:"primaryKey"`
	RoundID      string `gorm:"not null;index"`
	IsCorrect    bool
	DisplayOrder int
	ColorID      int
}

func (roundOptionRow) TableName() string {
	return "round_options"
}

type answerRow struct {
	ID            string `gorm:"primaryKey"`
	SessionID     string `gorm:"not null;index"`
	RoundID       string `gorm:"not null"`
	UserID        string `gorm:"not null"`
	OptionID      string `gorm:"not null"`
	IsCorrect     bool
	ResponseTimeS float64
	AnsweredAt    time.Time
}

func (answerRow) TableName() string {
	return "answers"
}

type chatMessageRow struct {
	ID        string `gorm:"primaryKey"`
	RoomID    string `gorm:"not null;index"`
	UserID    string `gorm:"not null"`
	Username  string
	Text      string    `gorm:"size:400"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (chatMessageRow) TableName() string {
	return "chat_messages"
}

// allRows lists every table for AutoMigrate
func allRows() []any {
	return []any{
		&userRow{},
		&userStatsRow{},
		&playingUserRow{},
		&roomRow{},
		&roomPlayerRow{},
		&sessionRow{},
		&gamePlayerRow{},
		&roundRow{},
		&roundOptionRow{},
		&answerRow{},
		&chatMessageRow{},
	}
}

// Conversions

func optionalString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func optionalID[T ~string](v *string) *T {
	if v == nil {
		return nil
	}
	id := T(*v)
	return &id
}

func toRoomRow(r *model.Room) roomRow {
	row := roomRow{
		ID:              string(r.ID),
		Code:            string(r.Code),
		CreatorID:       string(r.CreatorID),
		MinPlayers:      r.MinPlayers,
		MaxPlayers:      r.MaxPlayers,
		Started:         r.Started,
		ActiveSessionID: optionalString(r.ActiveSessionID),
		LatestSessionID: optionalString(r.LatestSessionID),
		NextSeat:        r.NextSeat,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	for _, p := range r.Players {
		row.Players = append(row.Players, roomPlayerRow{
			RoomID:    string(r.ID),
			UserID:    string(p.UserID),
			Username:  p.Username,
			IsOwner:   p.IsOwner,
			SeatOrder: p.SeatOrder,
			JoinedAt:  p.JoinedAt,
		})
	}
	return row
}

func fromRoomRow(row *roomRow) *model.Room {
	r := &model.Room{
		ID:              model.RoomID(row.ID),
		Code:            model.RoomCode(row.Code),
		CreatorID:       model.UserID(row.CreatorID),
		MinPlayers:      row.MinPlayers,
		MaxPlayers:      row.MaxPlayers,
		Started:         row.Started,
		ActiveSessionID: optionalID[model.SessionID](row.ActiveSessionID),
		LatestSessionID: optionalID[model.SessionID](row.LatestSessionID),
		NextSeat:        row.NextSeat,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	for _, p := range row.Players {
		r.Players = append(r.Players, model.RoomPlayer{
			UserID:    model.UserID(p.UserID),
			Username:  p.Username,
			IsOwner:   p.IsOwner,
			SeatOrder: p.SeatOrder,
			JoinedAt:  p.JoinedAt,
		})
	}
	r.Players = r.SeatedPlayers()
	return r
}

func toSessionRow(s *model.GameSession) (sessionRow, error) {
	seats, err := json.Marshal(s.Seats)
	if err != nil {
		return sessionRow{}, err
	}
	return sessionRow{
		ID:              string(s.ID),
		RoomID:          string(s.RoomID),
		State:           string(s.State),
		RoundsPerPlayer: s.RoundsPerPlayer,
		Seats:           datatypes.JSON(seats),
		CurrentSeat:     s.CurrentSeat,
		CurrentPlayer:   string(s.CurrentPlayer),
		RoundsPlayed:    s.RoundsPlayed,
		CurrentRoundID:  optionalString(s.CurrentRoundID),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		FinishedAt:      s.FinishedAt,
	}, nil
}

func fromSessionRow(row *sessionRow) (*model.GameSession, error) {
	var seats []model.UserID
	if len(row.Seats) > 0 {
		if err := json.Unmarshal(row.Seats, &seats); err != nil {
			return nil, err
		}
	}
	return &model.GameSession{
		ID:              model.SessionID(row.ID),
		RoomID:          model.RoomID(row.RoomID),
		State:           model.SessionState(row.State),
		RoundsPerPlayer: row.RoundsPerPlayer,
		Seats:           seats,
		CurrentSeat:     row.CurrentSeat,
		CurrentPlayer:   model.UserID(row.CurrentPlayer),
		RoundsPlayed:    row.RoundsPlayed,
		CurrentRoundID:  optionalID[model.RoundID](row.CurrentRoundID),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		FinishedAt:      row.FinishedAt,
	}, nil
}

func toRoundRow(r *model.Round) roundRow {
	row := roundRow{
		ID:        string(r.ID),
		SessionID: string(r.SessionID),
		Word:      r.Word,
		InkHex:    r.InkHex,
		CreatedAt: r.CreatedAt,
	}
	for _, o := range r.Options {
		row.Options = append(row.Options, roundOptionRow{
			ID:           string(o.ID),
			RoundID:      string(r.ID),
			IsCorrect:    o.IsCorrect,
			DisplayOrder: o.Order,
			ColorID:      int(o.ColorID),
		})
	}
	return row
}

func fromRoundRow(row *roundRow) *model.Round {
	r := &model.Round{
		ID:        model.RoundID(row.ID),
		SessionID: model.SessionID(row.SessionID),
		Word:      row.Word,
		InkHex:    row.InkHex,
		CreatedAt: row.CreatedAt,
	}
	for _, o := range row.Options {
		r.Options = append(r.Options, model.RoundOption{
			ID:        model.OptionID(o.ID),
			RoundID:   model.RoundID(o.RoundID),
			IsCorrect: o.IsCorrect,
			Order:     o.DisplayOrder,
			ColorID:   model.ColorID(o.ColorID),
		})
	}
	return r
}

func fromGamePlayerRow(row *gamePlayerRow) *model.GamePlayer {
	return &model.GamePlayer{
		SessionID:       model.SessionID(row.SessionID),
		UserID:          model.UserID(row.UserID),
		Username:        row.Username,
		SeatOrder:       row.SeatOrder,
		Score:           row.Score,
		TotalResponseMs: row.TotalResponseMs,
		ResponseCount:   row.ResponseCount,
	}
}

func fromUserStatsRow(row *userStatsRow) *model.UserStats {
	return &model.UserStats{
		UserID:          model.UserID(row.UserID),
		TotalScore:      row.TotalScore,
		GamesPlayed:     row.GamesPlayed,
		BestScore:       row.BestScore,
		Wins:            row.Wins,
		TotalResponseMs: row.TotalResponseMs,
		ResponseCount:   row.ResponseCount,
		UpdatedAt:       row.UpdatedAt,
	}
}

func fromAnswerRow(row *answerRow) *model.Answer {
	return &model.Answer{
		ID:            model.AnswerID(row.ID),
		SessionID:     model.SessionID(row.SessionID),
		RoundID:       model.RoundID(row.RoundID),
		UserID:        model.UserID(row.UserID),
		OptionID:      model.OptionID(row.OptionID),
		IsCorrect:     row.IsCorrect,
		ResponseTimeS: row.ResponseTimeS,
		AnsweredAt:    row.AnsweredAt,
	}
}

func fromChatMessageRow(row *chatMessageRow) *model.ChatMessage {
	return &model.ChatMessage{
		ID:        model.ChatMessageID(row.ID),
		RoomID:    model.RoomID(row.RoomID),
		UserID:    model.UserID(row.UserID),
		Username:  row.Username,
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
	}
}
