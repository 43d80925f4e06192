package audio

import (
	"context"
	"sync"
	"time"
)

// MockPlayer is a Sink that records playback instead of producing sound.
type MockPlayer struct {
	mu     sync.Mutex
	played []PCM

	// Delay simulates playback time; zero plays instantly.
	Delay time.Duration

	// Err, when set, is returned by every Play call.
	Err error
}

var _ Sink = (*MockPlayer)(nil)

// Play implements Sink.
func (m *MockPlayer) Play(ctx context.Context, pcm PCM) error {
	m.mu.Lock()
	delay, err := m.Delay, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.mu.Lock()
	m.played = append(m.played, pcm)
	m.mu.Unlock()
	return nil
}

// Played returns every PCM buffer that finished playing.
func (m *MockPlayer) Played() []PCM {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PCM(nil), m.played...)
}

// SetErr changes the error returned by Play.
func (m *MockPlayer) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

// SetDelay changes the simulated playback time.
func (m *MockPlayer) SetDelay(d time.Duration) {
	m.mu.Lock()
	m.Delay = d
	m.mu.Unlock()
}
