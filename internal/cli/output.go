package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/stroopgame/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.User:
		o.printUser(v)
	case response.UserStats:
		o.printUserStats(v)
	case []response.LeaderboardEntry:
		o.printLeaderboard(v)
	case response.Room:
		o.printRoom(v)
	case []response.RoomPlayer:
		o.printPlayers(v)
	case response.StartGame:
		o.printStartGame(v)
	case response.Round:
		o.printRound(v)
	case response.AnswerResult:
		o.printAnswerResult(v)
	case response.Scoreboard:
		o.printScoreboard(v)
	case response.Winner:
		fmt.Fprintf(o.w, "Winner: %s with %d points (%d ms total)\n", v.Username, v.Score, v.TotalResponseMs)
	case response.Player:
		fmt.Fprintf(o.w, "Current player: %s (%s)\n", v.Username, v.UserID)
	case response.ChatMessage:
		o.printChatMessage(v)
	case []response.ChatMessage:
		for _, m := range v {
			o.printChatMessage(m)
		}
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u response.User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Username, u.ID)
	if u.IsPlaying {
		fmt.Fprintln(o.w, "Playing: yes")
	}
}

func (o *Output) printUserStats(s response.UserStats) {
	fmt.Fprintf(o.w, "Games played: %d\n", s.GamesPlayed)
	fmt.Fprintf(o.w, "Wins: %d\n", s.Wins)
	fmt.Fprintf(o.w, "Best score: %d\n", s.BestScore)
	fmt.Fprintf(o.w, "Total score: %d\n", s.TotalScore)
	fmt.Fprintf(o.w, "Average response: %.0f ms\n", s.AvgResponseMs)
}

func (o *Output) printLeaderboard(entries []response.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(o.w, "No games played yet")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(o.w, "%2d. %-20s wins %-3d best %-3d total %-4d games %d\n",
			e.Rank, e.Username, e.Wins, e.BestScore, e.TotalScore, e.GamesPlayed)
	}
}

func (o *Output) printRoom(r response.Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.Code)
	state := "waiting"
	if r.Started {
		state = "playing"
	}
	fmt.Fprintf(o.w, "State: %s\n", state)
	fmt.Fprintf(o.w, "Players (%d/%d, need %d):\n", len(r.Players), r.MaxPlayers, r.MinPlayers)
	o.printPlayers(r.Players)
}

func (o *Output) printPlayers(players []response.RoomPlayer) {
	for _, p := range players {
		owner := ""
		if p.IsOwner {
			owner = " [owner]"
		}
		fmt.Fprintf(o.w, "  %d. %s (%s)%s\n", p.SeatOrder, p.Username, p.UserID, owner)
	}
}

func (o *Output) printStartGame(g response.StartGame) {
	fmt.Fprintf(o.w, "Game: %s\n", g.Session.ID)
	fmt.Fprintf(o.w, "Rounds per player: %d\n", g.Session.RoundsPerPlayer)
	if g.Round != nil {
		o.printRound(*g.Round)
	}
}

func (o *Output) printRound(r response.Round) {
	fmt.Fprintf(o.w, "Turn: %s (%d rounds left after this)\n", r.Player.Username, r.Remaining)
	if r.Round == nil {
		fmt.Fprintln(o.w, "No round in play")
		return
	}
	fmt.Fprintf(o.w, "Round: %s\n", r.Round.RoundID)
	fmt.Fprintf(o.w, "Word: %s in ink %s\n", strings.ToUpper(r.Round.Word), r.Round.InkHex)
	for _, opt := range r.Round.Options {
		fmt.Fprintf(o.w, "  [%d] %s (%s)\n", opt.Order, opt.ColorName, opt.OptionID)
	}
}

func (o *Output) printAnswerResult(a response.AnswerResult) {
	if a.IsCorrect {
		fmt.Fprintf(o.w, "Correct! Score: %d\n", a.Score)
	} else {
		fmt.Fprintf(o.w, "Wrong. Score: %d\n", a.Score)
	}

	if a.GameFinished {
		fmt.Fprintln(o.w, "Game complete!")
		if a.Winner != nil {
			fmt.Fprintf(o.w, "Winner: %s\n", a.Winner.Username)
		}
		return
	}
	if a.NextPlayer != nil {
		fmt.Fprintf(o.w, "Next player: %s\n", a.NextPlayer.Username)
	}
	if a.NextRound != nil {
		o.printRound(*a.NextRound)
	}
}

func (o *Output) printScoreboard(s response.Scoreboard) {
	for _, r := range s.Rows {
		fmt.Fprintf(o.w, "%d. %-20s %3d pts  %4.0f ms avg  %d/%d correct\n",
			r.Rank, r.Username, r.Score, r.AvgResponseMs, r.Correct, r.Correct+r.Wrong)
	}
}

func (o *Output) printChatMessage(m response.ChatMessage) {
	fmt.Fprintf(o.w, "[%s] %s: %s\n", m.CreatedAt.Format("15:04:05"), m.Username, m.Text)
}
