/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = time.Minute
	writeTimeout = 10 * time.Second
)

// Client is one websocket connection of a participant.
type Client struct {
	conn     *websocket.Conn
	send     chan any
	done     chan struct{}
	playerID string
	limiter  *rate.Limiter
}

func newClient(conn *websocket.Conn, playerID string, limit rate.Limit, burst int) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan any, 32),
		done:     make(chan struct{}),
		playerID: playerID,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Send queues msg without blocking the game loop. Messages to a slow or
// closed client are dropped.
func (c *Client) Send(msg any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Serve attaches conn to the game as playerID and blocks until the
// connection closes.
func (g *Game) Serve(ctx context.Context, conn *websocket.Conn, playerID string) {
	limit := rate.Inf
	if g.cfg.RateLimit > 0 {
		limit = rate.Limit(g.cfg.RateLimit)
	}

	c := newClient(conn, playerID, limit, max(g.cfg.RateBurst, 1))

	go c.writePump()

	defer func() {
		close(c.done)
		_ = conn.Close()

		disconnectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		g.Submit(disconnectCtx, Action{
			PlayerID: playerID,
			Conn:     c,
			Msg:      ClientMessage{Type: actionDisconnect},
		})
	}()

	if !g.Submit(ctx, Action{PlayerID: playerID, Conn: c, Msg: ClientMessage{Type: actionIdentify}}) {
		return
	}

	c.readPump(ctx, g)
}

func (c *Client) readPump(ctx context.Context, g *Game) {
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.Type == actionDisconnect {
			continue
		}

		if !c.limiter.Allow() {
			c.Send(ErrorMessage{Type: "error", Error: "too many requests"})

			continue
		}

		if !g.Submit(ctx, Action{PlayerID: c.playerID, Conn: c, Msg: msg}) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
