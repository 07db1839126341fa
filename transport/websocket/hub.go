package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dungeonforge/questengine/game/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
	outboundBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Message is the wire format pushed to observers.
type Message struct {
	GameID     string            `json:"game_id"`
	Event      string            `json:"event"`
	TurnNumber int               `json:"turn_number,omitempty"`
	State      *engine.GameState `json:"state,omitempty"`
	Outcome    *engine.Outcome   `json:"outcome,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
}

// observer is one connected WebSocket watcher of a single game.
type observer struct {
	hub      *Hub
	conn     *websocket.Conn
	outbound chan []byte
	gameID   string
}

// Hub fans committed turns out to the observers of each game. All observer
// set mutation happens on the Run goroutine, so no locks are needed.
type Hub struct {
	byGame map[string]map[*observer]struct{}

	publish chan *Message
	attach  chan *observer
	detach  chan *observer
}

// NewHub creates a hub. Call Run in its own goroutine before serving.
func NewHub() *Hub {
	return &Hub{
		byGame:  make(map[string]map[*observer]struct{}),
		publish: make(chan *Message),
		attach:  make(chan *observer),
		detach:  make(chan *observer),
	}
}

// Run processes attach, detach, and publish requests until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case obs := <-h.attach:
			set := h.byGame[obs.gameID]
			if set == nil {
				set = make(map[*observer]struct{})
				h.byGame[obs.gameID] = set
			}
			set[obs] = struct{}{}
			log.Printf("Observer attached to game %s (now %d)", obs.gameID, len(set))

		case obs := <-h.detach:
			h.drop(obs)

		case msg := <-h.publish:
			h.deliver(msg)
		}
	}
}

// ServeWS upgrades the request and attaches the connection as an observer
// of the given game.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	obs := &observer{
		hub:      h,
		conn:     conn,
		outbound: make(chan []byte, outboundBuffer),
		gameID:   gameID,
	}

	h.attach <- obs

	go obs.writeLoop()
	go obs.readLoop()
}

// BroadcastTurn sends a committed turn to all observers of a game. Observers
// only ever see fully committed snapshots.
func (h *Hub) BroadcastTurn(gameID string, turnNumber int, state *engine.GameState, outcome *engine.Outcome) {
	h.publish <- &Message{
		GameID:     gameID,
		Event:      "turn_committed",
		TurnNumber: turnNumber,
		State:      state,
		Outcome:    outcome,
	}
}

// BroadcastEvent sends an arbitrary event to all observers of a game.
func (h *Hub) BroadcastEvent(gameID string, event string, data interface{}) {
	h.publish <- &Message{
		GameID: gameID,
		Event:  event,
		Data:   data,
	}
}

func (h *Hub) drop(obs *observer) {
	set, ok := h.byGame[obs.gameID]
	if !ok {
		return
	}
	if _, ok := set[obs]; !ok {
		return
	}
	delete(set, obs)
	close(obs.outbound)
	if len(set) == 0 {
		delete(h.byGame, obs.gameID)
	}
	log.Printf("Observer detached from game %s (remaining %d)", obs.gameID, len(set))
}

func (h *Hub) deliver(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	for obs := range h.byGame[msg.GameID] {
		select {
		case obs.outbound <- data:
		default:
			// Slow observer, disconnect it rather than block the hub
			h.drop(obs)
		}
	}
}

// readLoop drains the connection. Observers are read-only; inbound frames
// exist only to keep the connection and pong handler alive.
func (o *observer) readLoop() {
	defer func() {
		o.hub.detach <- o
		o.conn.Close()
	}()

	o.conn.SetReadLimit(maxInboundSize)
	o.conn.SetReadDeadline(time.Now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		return o.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writeLoop pushes hub messages and periodic pings to the connection.
func (o *observer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		o.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-o.outbound:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				o.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := o.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
