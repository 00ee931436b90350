package model

import "time"

// RoundID uniquely identifies a round
type RoundID string

// OptionID uniquely identifies a round option
type OptionID string

// AnswerID uniquely identifies an answer
type AnswerID string

// Round is one puzzle: a colour name rendered in an ink colour, with two options
type Round struct {
	ID        RoundID
	SessionID SessionID
	Word      string // name of the word colour
	InkHex    string // colour the word is rendered in
	Options   []RoundOption
	CreatedAt time.Time
}

// RoundOption is one selectable answer
type RoundOption struct {
	ID        OptionID
	RoundID   RoundID
	IsCorrect bool
	Order     int // 1-based display order
	ColorID   ColorID
}

// GetOption returns the option with the given ID, or nil if not found
func (r *Round) GetOption(id OptionID) *RoundOption {
	for i := range r.Options {
		if r.Options[i].ID == id {
			return &r.Options[i]
		}
	}
	return nil
}

// CorrectOption returns the correct option, or nil for a malformed round
func (r *Round) CorrectOption() *RoundOption {
	for i := range r.Options {
		if r.Options[i].IsCorrect {
			return &r.Options[i]
		}
	}
	return nil
}

// Answer is an immutable record of one submission
type Answer struct {
	ID            AnswerID
	SessionID     SessionID
	RoundID       RoundID
	UserID        UserID
	OptionID      OptionID
	IsCorrect     bool
	ResponseTimeS float64
	AnsweredAt    time.Time
}
