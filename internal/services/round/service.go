package round

import (
	"context"
	"errors"

	"github.com/mcoot/stroopgame/internal/dependencies/clock"
	"github.com/mcoot/stroopgame/internal/dependencies/ids"
	"github.com/mcoot/stroopgame/internal/dependencies/random"
	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/services/catalog"
	"github.com/mcoot/stroopgame/internal/storage"
)

// ErrCatalogTooSmall is returned when the catalog cannot supply a distractor
var ErrCatalogTooSmall = errors.New("catalog needs at least two colours")

// Service generates and stores rounds
type Service struct {
	storage storage.Storage
	catalog *catalog.Catalog
	random  random.Random
	ids     ids.Generator
	clock   clock.Clock
}

// New creates a new round Service
func New(storage storage.Storage, catalog *catalog.Catalog, random random.Random, ids ids.Generator, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		catalog: catalog,
		random:  random,
		ids:     ids,
		clock:   clock,
	}
}

// Generate builds a round without storing it.
//
// The word colour and ink colour are drawn independently. The correct option
// is always the word colour. The distractor is the ink colour, or a random
// other colour when the ink matches the word. Display order is a coin flip.
func (s *Service) Generate(sessionID model.SessionID) (*model.Round, error) {
	n := s.catalog.Len()
	if n < 2 {
		return nil, ErrCatalogTooSmall
	}

	word := s.catalog.At(s.random.Intn(n))
	ink := s.catalog.At(s.random.Intn(n))

	distractor := ink
	if ink.ID == word.ID {
		others := make([]model.Color, 0, n-1)
		for _, c := range s.catalog.All() {
			if c.ID != word.ID {
				others = append(others, c)
			}
		}
		distractor = others[s.random.Intn(len(others))]
	}

	first, second := word, distractor
	if s.random.Intn(2) == 1 {
		first, second = distractor, word
	}

	roundID := model.RoundID(s.ids.NewID())
	round := &model.Round{
		ID:        roundID,
		SessionID: sessionID,
		Word:      word.Name,
		InkHex:    ink.Hex,
		CreatedAt: s.clock.Now(),
	}
	for i, c := range []model.Color{first, second} {
		round.Options = append(round.Options, model.RoundOption{
			ID:        model.OptionID(s.ids.NewID()),
			RoundID:   roundID,
			IsCorrect: c.ID == word.ID,
			Order:     i + 1,
			ColorID:   c.ID,
		})
	}
	return round, nil
}

// CreateRound generates a round for the session and stores it
func (s *Service) CreateRound(ctx context.Context, sessionID model.SessionID) (*model.Round, error) {
	round, err := s.Generate(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveRound(ctx, round); err != nil {
		return nil, err
	}
	return round, nil
}

// GetRound retrieves a stored round
func (s *Service) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	return s.storage.GetRound(ctx, id)
}

// FindOption loads the round and the option chosen in it. An option that
// belongs to a different round is reported as not found.
func (s *Service) FindOption(ctx context.Context, roundID model.RoundID, optionID model.OptionID) (*model.Round, *model.RoundOption, error) {
	round, err := s.storage.GetRound(ctx, roundID)
	if err != nil {
		return nil, nil, err
	}
	option := round.GetOption(optionID)
	if option == nil {
		return nil, nil, model.ErrOptionNotFound
	}
	return round, option, nil
}

// Color resolves a colour ID against the catalog
func (s *Service) Color(id model.ColorID) (model.Color, bool) {
	return s.catalog.Get(id)
}

// ServiceInterface allows for mocking
type ServiceInterface interface {
	Generate(sessionID model.SessionID) (*model.Round, error)
	CreateRound(ctx context.Context, sessionID model.SessionID) (*model.Round, error)
	GetRound(ctx context.Context, id model.RoundID) (*model.Round, error)
	FindOption(ctx context.Context, roundID model.RoundID, optionID model.OptionID) (*model.Round, *model.RoundOption, error)
	Color(id model.ColorID) (model.Color, bool)
}

var _ ServiceInterface = (*Service)(nil)
