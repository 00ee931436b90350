package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/stroopgame/internal/dependencies/mocks"
	"github.com/mcoot/stroopgame/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// MockRandom returns 0 when its queue is empty, so room codes and rounds are
// deterministic unless values are queued.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, mockIDs, Config{}, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
	}
}
