// Package activity streams per-request events to WebSocket subscribers; delivery is best-effort, a request is never
// failed because its activity could not be delivered.
package activity

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

const (
	// pongWait is how long a subscriber may go without answering a ping before its connection is dropped.
	pongWait = 60 * time.Second

	// pingPeriod is how often subscribers are pinged, comfortably inside the pong wait.
	pingPeriod = (pongWait * 9) / 10

	// writeWait bounds any single write to a subscriber.
	writeWait = 10 * time.Second
)

// Broadcaster fans handled request events out to the current WebSocket subscribers.
type Broadcaster struct {
	subscribers map[*websocket.Conn]struct{}
	lock        sync.Mutex
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// BroadcasterOptions encapsulates the options available when creating a new broadcaster.
type BroadcasterOptions struct {
	// Logger is the passed logger which implements a custom Log method
	Logger *slog.Logger
}

// defaults fills any missing attributes to a sane default.
func (b *BroadcasterOptions) defaults() {
	if b.Logger == nil {
		b.Logger = slog.Default()
	}
}

// NewBroadcaster creates a new broadcaster with no subscribers.
func NewBroadcaster(options BroadcasterOptions) *Broadcaster {
	// Fill out any missing fields with the sane defaults
	options.defaults()

	broadcaster := Broadcaster{
		subscribers: make(map[*websocket.Conn]struct{}),
		upgrader:    websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }},
		logger:      options.Logger,
	}

	return &broadcaster
}

// ServeHTTP upgrades the request to a WebSocket connection and subscribes it to the event stream until it closes or
// stops answering pings.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	b.add(conn)

	go b.keepalive(conn)
	go b.read(conn)
}

// Broadcast sends the given event to every subscriber, dropping any whose send fails.
func (b *Broadcaster) Broadcast(event Event) {
	body, err := jsoniter.Marshal(event)
	if err != nil {
		b.logger.Error("failed to encode event", "error", err)
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	for conn := range b.subscribers {
		err = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err == nil {
			err = conn.WriteMessage(websocket.TextMessage, body)
		}

		if err == nil {
			continue
		}

		b.logger.Debug("dropping subscriber", "error", err)

		delete(b.subscribers, conn)

		conn.Close()
	}
}

// Subscribers returns the number of currently connected subscribers.
func (b *Broadcaster) Subscribers() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return len(b.subscribers)
}

// Close drops every current subscriber.
func (b *Broadcaster) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	for conn := range b.subscribers {
		delete(b.subscribers, conn)

		conn.Close()
	}

	return nil
}

func (b *Broadcaster) add(conn *websocket.Conn) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.subscribers[conn] = struct{}{}
}

func (b *Broadcaster) remove(conn *websocket.Conn) {
	b.lock.Lock()
	defer b.lock.Unlock()

	delete(b.subscribers, conn)

	conn.Close()
}

// read discards anything the subscriber sends whilst processing control frames; answered pings push the read deadline
// along, a quiet or closed connection errors the read and unsubscribes.
func (b *Broadcaster) read(conn *websocket.Conn) {
	defer b.remove(conn)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

// keepalive pings the subscriber on a ticker; once a ping can not be written the connection is dropped, and the read
// side observes the close.
func (b *Broadcaster) keepalive(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait))
		if err != nil {
			b.remove(conn)
			return
		}
	}
}
