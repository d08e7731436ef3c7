package core

import "context"

// Subscribe returns a channel receiving an Event for every applied change.
// The channel is closed when ctx is done or the manager is closed.
// A subscriber that falls more than the buffer size behind loses events;
// mutations never wait on subscribers.
func (m *Manager) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, m.eventBuffer)

	m.subMu.Lock()
	if m.subsClosed {
		m.subMu.Unlock()
		close(ch)
		return ch
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-m.closing:
		}
		m.unsubscribe(id)
	}()

	return ch
}

func (m *Manager) unsubscribe(id int) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if ch, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(ch)
	}
}

func (m *Manager) closeSubscribers() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.subsClosed = true
}

func (m *Manager) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, e := range events {
		for id, ch := range m.subs {
			select {
			case ch <- e:
			default:
				if m.logger != nil {
					m.logger.Warn("subscriber buffer full, dropping event", "subscriber", id, "event", e.String())
				}
			}
		}
	}
}

func (m *Manager) subscriberCount() int {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	return len(m.subs)
}
