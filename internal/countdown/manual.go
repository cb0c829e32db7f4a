package countdown

import (
	"sync"
	"time"
)

// ManualClock выдаёт тикеры, которые тикают только по вызову Tick.
// Используется в тестах вместо реального времени.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

// NewManualClock создаёт ManualClock.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// NewTicker реализует TickerFactory.
func (m *ManualClock) NewTicker(time.Duration) Ticker {
	t := &manualTicker{
		c:       make(chan time.Time),
		stopped: make(chan struct{}),
	}

	m.mu.Lock()
	m.tickers = append(m.tickers, t)
	m.mu.Unlock()

	return t
}

// Tick доставляет один тик последнему работающему тикеру и ждёт, пока его примут.
// Возвращает false, если работающих тикеров нет.
func (m *ManualClock) Tick() bool {
	t := m.active()
	if t == nil {
		return false
	}

	select {
	case t.c <- time.Now():
		return true
	case <-t.stopped:
		return false
	}
}

// Active сообщает, есть ли работающий тикер.
func (m *ManualClock) Active() bool {
	return m.active() != nil
}

func (m *ManualClock) active() *manualTicker {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.tickers) - 1; i >= 0; i-- {
		if !m.tickers[i].isStopped() {
			return m.tickers[i]
		}
	}

	return nil
}

type manualTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *manualTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}
