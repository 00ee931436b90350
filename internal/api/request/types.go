package request

// LoginRequest is the request body for logging in. Unknown usernames are
// created on the fly.
type LoginRequest struct {
	Username string `json:"username"`
}

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string `json:"username"`
}

// StartGameRequest is the request body for starting a game. Zero selects the
// default rounds per player.
type StartGameRequest struct {
	RoundsPerPlayer int `json:"rounds_per_player,omitempty"`
}

// AnswerRequest is the request body for answering a round
type AnswerRequest struct {
	RoundID             string  `json:"round_id"`
	OptionID            string  `json:"option_id"`
	ResponseTimeSeconds float64 `json:"response_time_seconds"`
}

// ChatRequest is the request body for posting a chat message
type ChatRequest struct {
	Text string `json:"text"`
}

// TypingRequest is the request body for typing notifications
type TypingRequest struct {
	IsTyping bool `json:"is_typing"`
}
