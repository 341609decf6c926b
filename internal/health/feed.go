package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedBufferSize = 16
)

// FeedMessage is pushed to every websocket subscriber
type FeedMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Feed broadcasts run events to websocket subscribers. Slow subscribers
// whose buffer is full miss messages rather than block publishers.
type Feed struct {
	upgrader websocket.Upgrader
	logger   *logrus.Entry

	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan FeedMessage
}

// NewFeed creates an empty feed
func NewFeed(logger *logrus.Logger) *Feed {
	if logger == nil {
		logger = logrus.New()
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:      logger.WithField("component", "feed"),
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Publish queues an event for every subscriber
func (f *Feed) Publish(_ context.Context, eventType string, payload any) error {
	msg := FeedMessage{Type: eventType, Timestamp: time.Now().UTC(), Payload: payload}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subscribers {
		select {
		case sub.send <- msg:
		default:
			f.logger.Warn("Dropping feed message for slow subscriber")
		}
	}
	return nil
}

// Subscribers returns the number of connected clients
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// ServeHTTP upgrades the connection and streams events until the client leaves
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.WithError(err).Warn("Feed upgrade failed")
		return
	}

	sub := &subscriber{conn: conn, send: make(chan FeedMessage, feedBufferSize)}
	f.mu.Lock()
	f.subscribers[sub] = struct{}{}
	f.mu.Unlock()
	f.logger.WithField("remote", r.RemoteAddr).Debug("Feed subscriber connected")

	done := make(chan struct{})
	go f.readLoop(sub, done)
	f.writeLoop(sub, done)

	f.mu.Lock()
	delete(f.subscribers, sub)
	f.mu.Unlock()
	conn.Close()
}

// readLoop discards client messages and tracks pongs
func (f *Feed) readLoop(sub *subscriber, done chan<- struct{}) {
	defer close(done)
	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writeLoop(sub *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := sub.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
