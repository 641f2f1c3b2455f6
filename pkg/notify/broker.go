package notify

import (
	"sync"
	"time"

	"github.com/segmentio/encoding/json"
)

// Topics carried by the broker. Subscribers see every topic; the topic name
// rides along in the event envelope.
const (
	TopicBookAdd        = "book_add"
	TopicBooksRemove    = "books_remove"
	TopicMetadataUpdate = "metadata_update"
	TopicLog            = "log"
)

// Event is one notification envelope.
type Event struct {
	Topic     string      `json:"topic"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JSON renders the event for the SSE stream. Marshal failures degrade to an
// empty object rather than dropping the event.
func (e Event) JSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Broker fans events out to subscribers. Publishing never blocks: a
// subscriber whose channel is full misses the event. Notifications are
// best-effort progress reporting, not a durable feed.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBroker() *Broker {
	return &Broker{subs: map[int]chan Event{}}
}

// Subscribe returns a channel of events and an id to unsubscribe with.
func (b *Broker) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan Event, 16)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers an event to every subscriber that has room for it.
func (b *Broker) Publish(topic string, payload interface{}) {
	event := Event{Topic: topic, Timestamp: time.Now(), Payload: payload}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
