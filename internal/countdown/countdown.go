package countdown

import (
	"sync"
	"time"
)

// Resolution - шаг обратного отсчёта.
const Resolution = time.Second

// Ticker - источник тиков. В проде это time.Ticker, в тестах - ручной тикер.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory создаёт тикер с заданным периодом.
type TickerFactory func(d time.Duration) Ticker

// Countdown выдаёт тики с разрешением в одну секунду в отдельной горутине.
// Каждый запуск помечается поколением, которое передаётся в обработчик тика:
// владелец отбрасывает тики чужого поколения.
type Countdown struct {
	newTicker TickerFactory
	onTick    func(generation uint64)

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// New создаёт остановленный Countdown.
func New(newTicker TickerFactory, onTick func(generation uint64)) *Countdown {
	if newTicker == nil {
		newTicker = NewRealTicker
	}

	return &Countdown{
		newTicker: newTicker,
		onTick:    onTick,
	}
}

// Start останавливает предыдущий отсчёт и запускает новый с поколением generation.
func (c *Countdown) Start(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()

	stop := make(chan struct{})
	c.stop = stop
	c.running = true

	go c.loop(c.newTicker(Resolution), stop, generation)
}

// Cancel останавливает отсчёт. Не ждёт завершения горутины, поэтому
// его можно вызывать из обработчика тика.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
}

// Running сообщает, запущен ли отсчёт.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

func (c *Countdown) cancelLocked() {
	if !c.running {
		return
	}

	close(c.stop)
	c.stop = nil
	c.running = false
}

func (c *Countdown) loop(t Ticker, stop <-chan struct{}, generation uint64) {
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			// тик и остановка могли прийти одновременно
			select {
			case <-stop:
				return
			default:
			}

			c.onTick(generation)
		}
	}
}

type realTicker struct {
	t *time.Ticker
}

// NewRealTicker оборачивает time.Ticker.
func NewRealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }

func (r *realTicker) Stop() { r.t.Stop() }
