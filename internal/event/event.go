package event

import "sync"

// queue holds undelivered events for one channel. A single goroutine
// drains it so the channel sees events in the order they were sent.
type queue struct {
	channel chan Event
	pending []Event
	refs    int
	wake    chan struct{}
	done    chan struct{}
	mux     sync.Mutex
}

func newQueue(channel chan Event) *queue {
	q := &queue{
		channel: channel,
		pending: []Event{},
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go q.drain()

	return q
}

func (q *queue) push(evt Event) {
	q.mux.Lock()
	q.pending = append(q.pending, evt)
	q.mux.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue) next() (Event, bool) {
	q.mux.Lock()
	defer q.mux.Unlock()

	if len(q.pending) == 0 {
		return Event{}, false
	}

	evt := q.pending[0]
	q.pending = q.pending[1:]

	return evt, true
}

func (q *queue) drain() {
	for {
		select {
		case <-q.done:
			return
		case <-q.wake:
		}

		for evt, ok := q.next(); ok; evt, ok = q.next() {
			select {
			case q.channel <- evt:
			case <-q.done:
				return
			}
		}
	}
}

type listener struct {
	id        int
	eventType EventType
	queue     *queue
}

// EventManager implements the Manager interface
type EventManager struct {
	listeners []*listener
	queues    map[chan Event]*queue
	nextID    int
	mux       sync.RWMutex
}

// NewEventManager returns a new instance of EventManager
func NewEventManager() *EventManager {
	return &EventManager{
		listeners: []*listener{},
		queues:    map[chan Event]*queue{},
		nextID:    1,
	}
}

// RegisterListener registers a channel to receive events of a given type.
// A channel may be registered for several types and still receives every
// event in send order.
func (m *EventManager) RegisterListener(eventType EventType, channel chan Event) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	q, ok := m.queues[channel]

	if !ok {
		q = newQueue(channel)
		m.queues[channel] = q
	}

	q.refs++

	l := &listener{
		id:        m.nextID,
		eventType: eventType,
		queue:     q,
	}

	m.listeners = append(m.listeners, l)
	m.nextID++

	return l.id
}

// RemoveListener unregisters a listener. The channel is left open as the
// caller owns it. Undelivered events are dropped once the last listener
// of a channel is removed.
func (m *EventManager) RemoveListener(id int) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	listeners := []*listener{}

	for _, l := range m.listeners {
		if l.id != id {
			listeners = append(listeners, l)
			continue
		}

		l.queue.refs--

		if l.queue.refs == 0 {
			close(l.queue.done)
			delete(m.queues, l.queue.channel)
		}
	}

	m.listeners = listeners

	return id
}

// Send queues the event for every listener of its type and returns without
// waiting for delivery
func (m *EventManager) Send(evt Event) {
	m.mux.RLock()
	defer m.mux.RUnlock()

	for _, l := range m.listeners {
		if l.eventType == evt.Type {
			l.queue.push(evt)
		}
	}
}

// ReportFatalError sends an error that stops every future scan from
// succeeding
func (m *EventManager) ReportFatalError(err error) {
	m.Send(Event{Type: FatalErrorEventType, Payload: err})
}

// ReportError sends a non-fatal error event
func (m *EventManager) ReportError(err error) {
	m.Send(Event{Type: ErrorEventType, Payload: err})
}
