package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/yvileapsis/TEHOM-old-sub000/codec"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

const (
	writeDeadline        = 5 * time.Second
	shutdownPollInterval = 200 * time.Millisecond
)

// streamEvent is the wire shape of one relayed event.
type streamEvent struct {
	Name      string         `json:"name"`
	Entity    types.EntityID `json:"entity,omitempty"`
	Component string         `json:"component,omitempty"`
	Payload   any            `json:"payload,omitempty"`
}

// connAndDone pairs a websocket connection with a channel the hub uses to
// signal the web framework that registration finished.
type connAndDone struct {
	conn *websocket.Conn
	done chan bool
}

// StreamHub mirrors every event published on a Bus out to websocket clients.
// One goroutine owns all connection state; everything else talks to it over
// channels. Events queue up until Flush is called, typically once per frame.
type StreamHub struct {
	connections map[*websocket.Conn]bool
	broadcast   chan []byte
	queueLength chan chan int
	connCount   chan chan int
	flush       chan bool
	register    chan connAndDone
	unregister  chan connAndDone
	shutdown    chan bool
	stopped     chan bool
	queue       [][]byte
	isRunning   atomic.Bool
	logger      zerolog.Logger
}

// NewStreamHub starts a hub and taps the bus so every published event is
// queued for relay.
func NewStreamHub(bus *Bus, logger zerolog.Logger) *StreamHub {
	hub := &StreamHub{
		connections: map[*websocket.Conn]bool{},
		broadcast:   make(chan []byte, 64),
		queueLength: make(chan chan int),
		connCount:   make(chan chan int),
		flush:       make(chan bool),
		register:    make(chan connAndDone),
		unregister:  make(chan connAndDone),
		shutdown:    make(chan bool),
		stopped:     make(chan bool),
		queue:       make([][]byte, 0),
		logger:      logger,
	}
	bus.AttachTap(func(ev Event) {
		data, err := codec.Encode(streamEvent{
			Name:      ev.Name,
			Entity:    ev.Scope.Entity,
			Component: ev.Scope.Component,
			Payload:   ev.Payload,
		})
		if err != nil {
			logger.Error().Err(err).Msg("event payload is not json serializable; not relayed")
			return
		}
		// Nothing drains broadcast once the hub has stopped; drop instead of
		// blocking the publisher.
		select {
		case hub.broadcast <- data:
		case <-hub.stopped:
		}
	})
	go hub.Run()
	return hub
}

func (h *StreamHub) QueueLength() int {
	lengthChan := make(chan int)
	h.queueLength <- lengthChan
	return <-lengthChan
}

func (h *StreamHub) ConnectionCount() int {
	countChan := make(chan int)
	h.connCount <- countChan
	return <-countChan
}

// Flush writes all queued events to every connection and empties the queue.
func (h *StreamHub) Flush() {
	h.flush <- true
}

func (h *StreamHub) RegisterConnection(conn *websocket.Conn) {
	done := make(chan bool)
	h.register <- connAndDone{conn: conn, done: done}
	<-done
}

func (h *StreamHub) UnregisterConnection(conn *websocket.Conn) {
	done := make(chan bool)
	h.unregister <- connAndDone{conn: conn, done: done}
	<-done
}

func (h *StreamHub) Shutdown() {
	h.shutdown <- true
	for h.isRunning.Load() {
		time.Sleep(shutdownPollInterval)
	}
}

func (h *StreamHub) Run() {
	if h.isRunning.Load() {
		return
	}
	h.isRunning.Store(true)
	closeConnection := func(conn *websocket.Conn) {
		if _, ok := h.connections[conn]; ok {
			delete(h.connections, conn)
			if err := eris.Wrap(conn.Close(), ""); err != nil {
				h.logger.Error().Err(err).Msg("closing websocket connection failed")
			}
		}
	}
Loop:
	for h.isRunning.Load() {
		select {
		case countChan := <-h.connCount:
			countChan <- len(h.connections)
		case lengthChan := <-h.queueLength:
			lengthChan <- len(h.queue)
		case reg := <-h.register:
			h.connections[reg.conn] = true
			reg.done <- true
		case unreg := <-h.unregister:
			closeConnection(unreg.conn)
			unreg.done <- true
		case data := <-h.broadcast:
			h.queue = append(h.queue, data)
		case <-h.flush:
			h.flushQueue()
		case <-h.shutdown:
			go func() {
				for range h.shutdown { //nolint:revive // drains the channel until closed
				}
			}()
			for conn := range h.connections {
				closeConnection(conn)
			}
			break Loop
		}
	}
	close(h.stopped)
	h.isRunning.Store(false)
}

// flushQueue fans the queued events out to all connections concurrently and
// waits for every write to finish before clearing the queue.
func (h *StreamHub) flushQueue() {
	var wg sync.WaitGroup
	for conn := range h.connections {
		conn := conn
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, data := range h.queue {
				if err := eris.Wrap(conn.SetWriteDeadline(time.Now().Add(writeDeadline)), ""); err != nil {
					go h.UnregisterConnection(conn)
					h.logger.Error().Err(err).Msg("connection unregistered: write deadline could not be set")
					break
				}
				if err := eris.Wrap(conn.WriteMessage(websocket.TextMessage, data), ""); err != nil {
					go h.UnregisterConnection(conn)
					h.logger.Error().Err(err).Msg("connection unregistered: write failed")
					break
				}
			}
		}()
	}
	wg.Wait()
	h.queue = h.queue[:0]
}

// FiberWebSocketUpgrader marks requests eligible for the websocket upgrade.
func FiberWebSocketUpgrader(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		ctx.Locals("allowed", true)
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler returns the connection handler to mount under a fiber
// route. Clients only listen; inbound messages are discarded.
func (h *StreamHub) WebSocketHandler() func(conn *websocket.Conn) {
	return func(conn *websocket.Conn) {
		h.RegisterConnection(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.logger.Debug().Err(eris.Wrap(err, "")).Msg("websocket read ended")
				break
			}
		}
	}
}

// Mount registers the hub's websocket endpoint on the app.
func (h *StreamHub) Mount(app *fiber.App, path string) {
	app.Use(path, FiberWebSocketUpgrader)
	app.Get(path, websocket.New(h.WebSocketHandler()))
}
