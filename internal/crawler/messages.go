package crawler

import "sync"

// defaultMessageCapacity bounds the status message buffer.
const defaultMessageCapacity = 256

// Messages is the status channel workers write human-readable progress
// markers to. Publishing never blocks; when the buffer is full the oldest
// message is dropped. It carries no correctness weight.
type Messages struct {
	mu       sync.Mutex
	ch       chan string
	capacity int
}

// NewMessages creates a message channel. capacity <= 0 uses the default.
func NewMessages(capacity int) *Messages {
	if capacity <= 0 {
		capacity = defaultMessageCapacity
	}
	return &Messages{
		ch:       make(chan string, capacity),
		capacity: capacity,
	}
}

// Publish enqueues a status message, dropping the oldest one if the buffer
// is full.
func (m *Messages) Publish(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		select {
		case m.ch <- msg:
			return
		default:
			select {
			case <-m.ch:
			default:
			}
		}
	}
}

// C returns the receive side of the channel.
func (m *Messages) C() <-chan string {
	return m.ch
}

// Drain consumes buffered messages without blocking and returns them.
func (m *Messages) Drain() []string {
	var out []string
	for {
		select {
		case msg := <-m.ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}
