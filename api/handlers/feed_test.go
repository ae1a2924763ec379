package handlers

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestFeedPublish_NilFeedIsSafe(t *testing.T) {
	var f *Feed
	assert.NotPanics(t, func() {
		f.Publish("club1", FeedEvent{Kind: "roster.joined"})
	})
}

func TestFeedPublish_EmptyRoomIsNoop(t *testing.T) {
	f := NewFeed()
	assert.NotPanics(t, func() {
		f.Publish("club1", FeedEvent{Kind: "treasury.added"})
	})
}

// waitForSubscriber blocks until the club room has a registered client;
// registration happens on the server goroutine just after the upgrade, so the
// dial returning does not guarantee it ran yet
func waitForSubscriber(t *testing.T, f *Feed, clubID string) {
	for i := 0; i < 200; i++ {
		f.mu.Lock()
		n := len(f.rooms[clubID])
		f.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no client registered for club %s", clubID)
}

func TestFeedServeWS_DeliversPublishedEvents(t *testing.T) {
	f := NewFeed()

	router := mux.NewRouter()
	router.HandleFunc("/ws/{club_id}", f.ServeWS)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/club1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer conn.Close()

	waitForSubscriber(t, f, "club1")
	f.Publish("club1", FeedEvent{Kind: "website.sections.reordered", Payload: map[string]string{"sectionId": "s1"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event FeedEvent
	assert.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "website.sections.reordered", event.Kind)
	assert.False(t, event.At.IsZero())
}

func TestFeedPublish_ConcurrentHandlersShareOneConnection(t *testing.T) {
	f := NewFeed()

	router := mux.NewRouter()
	router.HandleFunc("/ws/{club_id}", f.ServeWS)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/club1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer conn.Close()

	waitForSubscriber(t, f, "club1")

	received := make(chan FeedEvent, 256)
	go func() {
		defer close(received)
		for {
			var event FeedEvent
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			received <- event
		}
	}()

	// every handler goroutine publishes straight from its request path, so
	// writes to the same connection must be serialized by the hub
	const publishers, eventsEach = 16, 10
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < eventsEach; j++ {
				f.Publish("club1", FeedEvent{Kind: "treasury.added"})
			}
		}()
	}
	wg.Wait()

	deadline := time.After(3 * time.Second)
	for count := 0; count < publishers*eventsEach; count++ {
		select {
		case _, ok := <-received:
			if !ok {
				t.Fatalf("connection closed after %d of %d events", count, publishers*eventsEach)
			}
		case <-deadline:
			t.Fatalf("received %d of %d events", count, publishers*eventsEach)
		}
	}
}

func TestFeedServeWS_EventsAreScopedToClub(t *testing.T) {
	f := NewFeed()

	router := mux.NewRouter()
	router.HandleFunc("/ws/{club_id}", f.ServeWS)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/club1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer conn.Close()

	waitForSubscriber(t, f, "club1")
	f.Publish("club2", FeedEvent{Kind: "treasury.added"})
	f.Publish("club1", FeedEvent{Kind: "roster.joined"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event FeedEvent
	assert.NoError(t, conn.ReadJSON(&event))
	// the club2 event never reaches this client
	assert.Equal(t, "roster.joined", event.Kind)
}
