package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"variantchess/internal/game"
	"variantchess/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBuffer     = 32
	computeTimeout = 30 * time.Second
)

var errSendBufferFull = errors.New("send buffer full")

// client is one websocket connection. It implements session.Conn: the
// coordinator hands it messages and the write pump pushes them out, so slow
// readers never block a room.
type client struct {
	id   string
	ws   *websocket.Conn
	co   *session.Coordinator
	log  *zap.Logger
	send chan session.Msg
	once sync.Once
}

func newClient(id string, ws *websocket.Conn, co *session.Coordinator, log *zap.Logger) *client {
	return &client{
		id:   id,
		ws:   ws,
		co:   co,
		log:  log.With(zap.String("conn", id)),
		send: make(chan session.Msg, sendBuffer),
	}
}

func (c *client) ID() string { return c.id }

// Send queues the message for the write pump. A full buffer means the peer
// stopped reading; dropping is better than stalling the room lock holder.
func (c *client) Send(m session.Msg) error {
	select {
	case c.send <- m:
		return nil
	default:
		c.log.Warn("dropping message", zap.String("type", m.T))
		return errSendBufferFull
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.co.Disconnect(c)
		c.closeSend()
		_ = c.ws.Close()
	}()
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var m session.Msg
		if err := c.ws.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read failed", zap.Error(err))
			}
			return
		}
		c.dispatch(m)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case m, open := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = c.ws.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.ws.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) closeSend() {
	c.once.Do(func() { close(c.send) })
}

// dispatch routes one inbound message to the coordinator. Errors are already
// reported to the peer by the coordinator; here they only feed the log.
func (c *client) dispatch(m session.Msg) {
	var err error
	switch m.T {
	case session.MsgCreateRoom:
		var def *game.ProjectDefinition
		if raw, ok := m.M["project"]; ok {
			def, err = decodeProject(raw)
			if err != nil {
				_ = c.Send(session.Msg{T: session.MsgError, M: map[string]any{"error": err.Error()}})
				return
			}
		}
		_, err = c.co.CreateRoom(c, def, boolField(m, "vsComputer"), intField(m, "difficulty"))
	case session.MsgJoinRoom:
		err = c.co.JoinRoom(c, strField(m, "room"))
	case session.MsgMove:
		err = c.co.SubmitMove(c, strField(m, "room"),
			game.SquareID(strField(m, "from")),
			game.SquareID(strField(m, "to")),
			game.PieceType(strField(m, "promotion")))
	case session.MsgChat:
		err = c.co.Chat(c, strField(m, "room"), strField(m, "text"))
	case session.MsgOfferDraw:
		err = c.co.OfferDraw(c, strField(m, "room"))
	case session.MsgAcceptDraw:
		err = c.co.AcceptDraw(c, strField(m, "room"))
	case session.MsgResign:
		err = c.co.Resign(c, strField(m, "room"))
	case session.MsgRequestComputerMove:
		ctx, cancel := context.WithTimeout(context.Background(), computeTimeout)
		err = c.co.RequestComputerMove(ctx, c, strField(m, "room"), intField(m, "difficulty"))
		cancel()
	default:
		_ = c.Send(session.Msg{T: session.MsgError, M: map[string]any{
			"error": "unknown message type " + m.T,
		}})
		return
	}
	if err != nil {
		c.log.Debug("message rejected", zap.String("type", m.T), zap.Error(err))
	}
}

// decodeProject converts the free-form payload back into a typed project
// definition.
func decodeProject(raw any) (*game.ProjectDefinition, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var def game.ProjectDefinition
	if err := json.Unmarshal(buf, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func strField(m session.Msg, key string) string {
	s, _ := m.M[key].(string)
	return s
}

func boolField(m session.Msg, key string) bool {
	b, _ := m.M[key].(bool)
	return b
}

func intField(m session.Msg, key string) int {
	switch v := m.M[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
