package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	// The service sits behind the app's own frontend; origin checks stay
	// permissive here.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades the request to a websocket and attaches it to the hub.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("realtime: ws upgrade: %v", err)
			return
		}

		client := &Client{
			hub:  hub,
			conn: conn,
			send: make(chan []byte, 256),
		}
		hub.register <- client

		welcome := map[string]any{
			"type": "welcome",
			"now":  time.Now().UTC().Format(time.RFC3339Nano),
		}
		if b, err := json.Marshal(welcome); err == nil {
			client.send <- b
		}

		go client.writePump()
		go client.readPump()
	}
}

// RunRedisSubscriber forwards messages published on the broadcast channel to
// the hub. Blocks until ctx is done or the subscription drops.
func RunRedisSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.Subscribe(ctx, "broadcast")
	defer sub.Close()

	ch := sub.Channel()
	for msg := range ch {
		hub.broadcast <- []byte(msg.Payload)
	}
}
