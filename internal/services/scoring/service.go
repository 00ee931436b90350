package scoring

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"

	"github.com/mcoot/stroopgame/internal/dependencies/clock"
	"github.com/mcoot/stroopgame/internal/dependencies/ids"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/storage"
)

const (
	// CorrectAnswerPoints is the flat score for a correct answer. Wrong
	// answers score nothing.
	CorrectAnswerPoints = 1

	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// Service applies answers to session and lifetime statistics and ranks players.
// Callers hold the room lock for every mutating call.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
}

// New creates a new scoring Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
	}
}

// AnswerInput describes one validated submission
type AnswerInput struct {
	SessionID     model.SessionID
	RoundID       model.RoundID
	UserID        model.UserID
	OptionID      model.OptionID
	IsCorrect     bool
	ResponseTimeS float64
}

// LeaderboardEntry is one row of the lifetime leaderboard
type LeaderboardEntry struct {
	Rank          int
	UserID        model.UserID
	Username      string
	Wins          int
	BestScore     int
	TotalScore    int
	GamesPlayed   int
	AvgResponseMs float64
}

// ScoreDelta returns the points an answer is worth
func (s *Service) ScoreDelta(isCorrect bool) int {
	if isCorrect {
		return CorrectAnswerPoints
	}
	return 0
}

// ResponseMs converts a response time in seconds to whole milliseconds
func ResponseMs(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}

// EnsureStats returns the user's lifetime stats, creating an empty row on first use
func (s *Service) EnsureStats(ctx context.Context, userID model.UserID) (*model.UserStats, error) {
	stats, err := s.storage.GetUserStats(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, model.ErrStatsNotFound) {
		return nil, err
	}

	stats = &model.UserStats{UserID: userID, UpdatedAt: s.clock.Now()}
	if err := s.storage.SaveUserStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordAnswer appends the answer and applies its delta and response time to
// the session row and the lifetime stats. Returns the updated session row and
// the delta applied.
func (s *Service) RecordAnswer(ctx context.Context, in AnswerInput) (*model.GamePlayer, int, error) {
	player, err := s.storage.GetGamePlayer(ctx, in.SessionID, in.UserID)
	if err != nil {
		return nil, 0, err
	}
	stats, err := s.EnsureStats(ctx, in.UserID)
	if err != nil {
		return nil, 0, err
	}

	now := s.clock.Now()
	delta := s.ScoreDelta(in.IsCorrect)
	ms := ResponseMs(in.ResponseTimeS)

	answer := &model.Answer{
		ID:            model.AnswerID(s.ids.NewID()),
		SessionID:     in.SessionID,
		RoundID:       in.RoundID,
		UserID:        in.UserID,
		OptionID:      in.OptionID,
		IsCorrect:     in.IsCorrect,
		ResponseTimeS: in.ResponseTimeS,
		AnsweredAt:    now,
	}
	if err := s.storage.SaveAnswer(ctx, answer); err != nil {
		return nil, 0, err
	}

	player.Score += delta
	player.TotalResponseMs += ms
	player.ResponseCount++
	if err := s.storage.SaveGamePlayer(ctx, player); err != nil {
		return nil, 0, err
	}

	stats.TotalScore += delta
	stats.TotalResponseMs += ms
	stats.ResponseCount++
	stats.UpdatedAt = now
	if err := s.storage.SaveUserStats(ctx, stats); err != nil {
		return nil, 0, err
	}

	return player, delta, nil
}

// FinalizeSession updates games played and best score for every participant
// and credits the winner. Returns the winning row, or nil for an empty session.
func (s *Service) FinalizeSession(ctx context.Context, sessionID model.SessionID) (*model.GamePlayer, error) {
	players, err := s.storage.GetGamePlayersForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	winner := RankWinner(players)
	now := s.clock.Now()

	for _, p := range players {
		stats, err := s.EnsureStats(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		stats.GamesPlayed++
		stats.BestScore = max(stats.BestScore, p.Score)
		if winner != nil && winner.UserID == p.UserID {
			stats.Wins++
		}
		stats.UpdatedAt = now
		if err := s.storage.SaveUserStats(ctx, stats); err != nil {
			return nil, err
		}
	}

	return winner, nil
}

// RankWinner picks the single winner: highest score, then lowest total
// response time, then lowest user ID
func RankWinner(players []*model.GamePlayer) *model.GamePlayer {
	if len(players) == 0 {
		return nil
	}
	ranked := slices.Clone(players)
	slices.SortFunc(ranked, func(a, b *model.GamePlayer) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(a.TotalResponseMs, b.TotalResponseMs),
			cmp.Compare(a.UserID, b.UserID),
		)
	})
	return ranked[0]
}

// Scoreboard ranks the session's players by score, then average response
// time, and counts their correct and wrong answers
func (s *Service) Scoreboard(ctx context.Context, sessionID model.SessionID) ([]model.ScoreboardRow, error) {
	players, err := s.storage.GetGamePlayersForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := s.storage.GetAnswersForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	correct := make(map[model.UserID]int)
	wrong := make(map[model.UserID]int)
	for _, a := range answers {
		if a.IsCorrect {
			correct[a.UserID]++
		} else {
			wrong[a.UserID]++
		}
	}

	rows := make([]model.ScoreboardRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, model.ScoreboardRow{
			UserID:          p.UserID,
			Username:        p.Username,
			Score:           p.Score,
			AvgResponseMs:   p.AverageResponseMs(),
			TotalResponseMs: p.TotalResponseMs,
			Correct:         correct[p.UserID],
			Wrong:           wrong[p.UserID],
		})
	}
	slices.SortFunc(rows, func(a, b model.ScoreboardRow) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(a.AvgResponseMs, b.AvgResponseMs),
			cmp.Compare(a.UserID, b.UserID),
		)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// Leaderboard ranks lifetime stats by wins, then best score, then total score.
// take defaults to 10 and is clamped to 1..100.
func (s *Service) Leaderboard(ctx context.Context, take int) ([]LeaderboardEntry, error) {
	if take <= 0 {
		take = DefaultLeaderboardSize
	}
	take = min(take, MaxLeaderboardSize)

	all, err := s.storage.ListUserStats(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(all, func(a, b *model.UserStats) int {
		return cmp.Or(
			cmp.Compare(b.Wins, a.Wins),
			cmp.Compare(b.BestScore, a.BestScore),
			cmp.Compare(b.TotalScore, a.TotalScore),
			cmp.Compare(a.UserID, b.UserID),
		)
	})
	if len(all) > take {
		all = all[:take]
	}

	entries := make([]LeaderboardEntry, 0, len(all))
	for i, st := range all {
		username := ""
		if user, err := s.storage.GetUser(ctx, st.UserID); err == nil {
			username = user.Username
		} else if !errors.Is(err, model.ErrUserNotFound) {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			UserID:        st.UserID,
			Username:      username,
			Wins:          st.Wins,
			BestScore:     st.BestScore,
			TotalScore:    st.TotalScore,
			GamesPlayed:   st.GamesPlayed,
			AvgResponseMs: st.AverageResponseMs(),
		})
	}
	return entries, nil
}

// UserStats returns the user's lifetime stats. A user who never played gets
// an empty row.
func (s *Service) UserStats(ctx context.Context, userID model.UserID) (*model.UserStats, error) {
	stats, err := s.storage.GetUserStats(ctx, userID)
	if errors.Is(err, model.ErrStatsNotFound) {
		return &model.UserStats{UserID: userID}, nil
	}
	return stats, err
}

// Interface for dependency injection
type ServiceInterface interface {
	ScoreDelta(isCorrect bool) int
	EnsureStats(ctx context.Context, userID model.UserID) (*model.UserStats, error)
	RecordAnswer(ctx context.Context, in AnswerInput) (*model.GamePlayer, int, error)
	FinalizeSession(ctx context.Context, sessionID model.SessionID) (*model.GamePlayer, error)
	Scoreboard(ctx context.Context, sessionID model.SessionID) ([]model.ScoreboardRow, error)
	Leaderboard(ctx context.Context, take int) ([]LeaderboardEntry, error)
	UserStats(ctx context.Context, userID model.UserID) (*model.UserStats, error)
}

var _ ServiceInterface = (*Service)(nil)
