package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Request is one message a connected client sends over the socket,
// addressed to a named hubObject, mirroring the teacher's Request shape
// consumed by hub_simulation.go/hub_suggestions.go.
type Request struct {
	ID     string          `json:"id"`
	Object string          `json:"object"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is what a hubObject writes back to the requesting connection.
type Response struct {
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// NewOkResponse builds a success Response carrying a human-readable
// message as its data payload.
func NewOkResponse(id, message string) Response {
	data, _ := json.Marshal(message)
	return Response{ID: id, OK: true, Data: data}
}

// NewResponse builds a success Response carrying a pre-encoded payload.
func NewResponse(id string, data json.RawMessage) Response {
	return Response{ID: id, OK: true, Data: data}
}

// NewErrorResponse builds a failure Response from err.
func NewErrorResponse(id string, err error) Response {
	return Response{ID: id, OK: false, Error: err.Error()}
}

// hubObject is implemented by every named object clients can dispatch
// requests to over the socket (see optimizeObject and monitorObject).
type hubObject interface {
	dispatch(h *Hub, req Request, conn *connection)
}

type connection struct {
	ws       *websocket.Conn
	pushChan chan Response
}

// Hub fans out broadcast events (run-finished, sent after an optimize
// request submitted over the socket) to every connected dashboard client and routes
// inbound requests to the named hubObject, modeled on the teacher's
// hub_simulation.go/hub_suggestions.go dispatch pattern.
type Hub struct {
	objects    map[string]hubObject
	broadcast  chan []byte
	register   chan *connection
	unregister chan *connection
	conns      map[*connection]bool
	logger     log.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewHub constructs an empty Hub with optimize/monitor objects
// registered.
func NewHub(env *Env) *Hub {
	h := &Hub{
		objects:    make(map[string]hubObject),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *connection),
		unregister: make(chan *connection),
		conns:      make(map[*connection]bool),
		logger:     env.Logger.New("module", "hub"),
	}
	h.objects["optimize"] = &optimizeObject{env: env}
	h.objects["monitor"] = &monitorObject{env: env}
	return h
}

// run is the Hub's event loop, started as a goroutine from Run.
func (h *Hub) run(up chan<- bool) {
	up <- true
	for {
		select {
		case c := <-h.register:
			h.conns[c] = true
		case c := <-h.unregister:
			if _, ok := h.conns[c]; ok {
				delete(h.conns, c)
				close(c.pushChan)
			}
		case msg := <-h.broadcast:
			for c := range h.conns {
				select {
				case c.pushChan <- Response{OK: true, Data: msg}:
				default:
				}
			}
		}
	}
}

// Broadcast pushes an event to every connected client.
func (h *Hub) Broadcast(event string, payload interface{}) {
	body, err := json.Marshal(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{event, payload})
	if err != nil {
		h.logger.Error("failed to marshal broadcast", "event", event, "error", err)
		return
	}
	select {
	case h.broadcast <- body:
	default:
		h.logger.Warn("broadcast channel full, dropping event", "event", event)
	}
}

func (h *Hub) serveWs(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn := &connection{ws: ws, pushChan: make(chan Response, 32)}
	h.register <- conn
	go h.writePump(conn)
	h.readPump(conn)
}

func (h *Hub) readPump(conn *connection) {
	defer func() {
		h.unregister <- conn
		conn.ws.Close()
	}()
	for {
		var req Request
		if err := conn.ws.ReadJSON(&req); err != nil {
			return
		}
		obj, ok := h.objects[req.Object]
		if !ok {
			conn.pushChan <- NewErrorResponse(req.ID, errUnknownObject(req.Object))
			continue
		}
		obj.dispatch(h, req, conn)
	}
}

func (h *Hub) writePump(conn *connection) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case resp, ok := <-conn.pushChan:
			if !ok {
				conn.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.ws.WriteJSON(resp); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
