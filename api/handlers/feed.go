package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FeedEvent is a single message pushed to clients watching a club
type FeedEvent struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

const feedWriteTimeout = 5 * time.Second

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// dashboards are served from another origin than the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedClient is one subscribed connection. The mutex serializes writes:
// gorilla/websocket supports at most one concurrent writer per connection,
// and Publish runs on whichever handler goroutine triggered the event.
type feedClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *feedClient) write(event FeedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
	return c.conn.WriteJSON(event)
}

// Feed fans events out to websocket clients grouped by club. Handlers publish
// fire-and-forget; a slow or dead client is dropped rather than blocking the
// request path.
type Feed struct {
	mu    sync.Mutex
	rooms map[string]map[*feedClient]bool
}

// NewFeed returns an empty hub
func NewFeed() *Feed {
	return &Feed{rooms: map[string]map[*feedClient]bool{}}
}

// ServeWS upgrades the request and parks the connection in the club's room
// until the peer goes away
func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("failed to upgrade feed connection", "clubId", clubID, "error", err)
		return
	}
	client := &feedClient{conn: conn}

	f.mu.Lock()
	if f.rooms[clubID] == nil {
		f.rooms[clubID] = map[*feedClient]bool{}
	}
	f.rooms[clubID][client] = true
	f.mu.Unlock()

	zap.S().Debugw("feed client connected", "clubId", clubID)

	// drain reads so control frames are processed; any read error means the
	// client is gone
	go func() {
		defer f.remove(clubID, client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (f *Feed) remove(clubID string, client *feedClient) {
	f.mu.Lock()
	if room, ok := f.rooms[clubID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(f.rooms, clubID)
		}
	}
	f.mu.Unlock()
	client.conn.Close()
}

// Publish sends an event to every client watching the club. Safe to call on a
// nil Feed so handlers under test need no hub, and safe to call from
// concurrent handlers: each client serializes its own writes.
func (f *Feed) Publish(clubID string, event FeedEvent) {
	if f == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}

	f.mu.Lock()
	clients := make([]*feedClient, 0, len(f.rooms[clubID]))
	for client := range f.rooms[clubID] {
		clients = append(clients, client)
	}
	f.mu.Unlock()

	for _, client := range clients {
		if err := client.write(event); err != nil {
			zap.S().Debugw("dropping feed client", "clubId", clubID, "error", err)
			f.remove(clubID, client)
		}
	}
}
