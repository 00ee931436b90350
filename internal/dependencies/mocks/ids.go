package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/stroopgame/internal/dependencies/ids"
)

// MockIDs hands out sequential IDs: "id-1", "id-2", ...
type MockIDs struct {
	mu   sync.Mutex
	next int
}

var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next sequential ID
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}
