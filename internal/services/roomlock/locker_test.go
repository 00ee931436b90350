package roomlock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameRoom(t *testing.T) {
	l := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("12345")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.Len())
}

func TestLockDoesNotBlockOtherRooms(t *testing.T) {
	l := New()
	unlockA := l.Lock("11111")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("22222")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different room blocked")
	}
}

func TestLockIsReleased(t *testing.T) {
	l := New()
	unlock := l.Lock("12345")
	assert.Equal(t, 1, l.Len())
	unlock()
	assert.Equal(t, 0, l.Len())

	unlock = l.Lock("12345")
	unlock()
}
