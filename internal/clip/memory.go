package clip

import "sync"

// Memory is an in-process clipboard backend used in tests and anywhere the
// real clipboard must not be touched. Writes signal Watch like a real OS
// clipboard would, so the self-write feedback loop is reproducible.
type Memory struct {
	mu      sync.Mutex
	text    string
	readErr error
	watchCh chan struct{}
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{watchCh: make(chan struct{}, 1)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return "", m.readErr
	}
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	m.signal()
	return nil
}

func (m *Memory) Watch() <-chan struct{} { return m.watchCh }
func (m *Memory) Close()                 {}

// SetText simulates an external application writing to the clipboard.
func (m *Memory) SetText(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	m.signal()
}

// FailReads makes subsequent reads return err (nil restores normal reads).
// Simulates the permission-denied steady state.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

func (m *Memory) signal() {
	select {
	case m.watchCh <- struct{}{}:
	default:
	}
}
