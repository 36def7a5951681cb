// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/gogpu/mpvtex/dispatch"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	sendQueue      = 64
)

// EventFrameAvailable is the event name sent when a texture has a new frame.
const EventFrameAvailable = "frameAvailable"

// request is one method call from a client.
type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Args   dispatch.Args   `json:"args"`
}

// response answers a request with the same id.
type response struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// event is an unsolicited notification.
type event struct {
	Event     string `json:"event"`
	TextureID int64  `json:"textureId"`
}

// channelClient serves one websocket connection. The read loop executes
// requests in order; a single writer owns the connection for output.
type channelClient struct {
	srv     *Server
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	log     *slog.Logger
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("server: websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &channelClient{
		srv:     s,
		conn:    conn,
		send:    make(chan []byte, sendQueue),
		limiter: rate.NewLimiter(rate.Limit(s.cfg.EventRate), s.cfg.EventBurst),
		log:     s.log.With("remote", r.RemoteAddr),
	}
	s.clients.Add(1)
	defer s.clients.Add(-1)
	c.serve(s.baseCtx)
}

func (c *channelClient) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	sub, unsubscribe := c.srv.host.subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop(ctx)
	}()
	go c.eventLoop(ctx, sub)

	c.log.Info("server: channel opened")
	c.readLoop(ctx)
	cancel()
	<-done
	_ = c.conn.Close()
	c.log.Info("server: channel closed")
}

func (c *channelClient) readLoop(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("server: channel read failed", "err", err)
			}
			return
		}
		resp := c.srv.call(data)
		out, err := json.Marshal(resp)
		if err != nil {
			c.log.Error("server: encoding response failed", "err", err)
			continue
		}
		if !c.enqueue(ctx, out) {
			return
		}
	}
}

// enqueue blocks until msg is queued or ctx ends.
func (c *channelClient) enqueue(ctx context.Context, msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// eventLoop turns subscriber marks into frameAvailable events, waiting on
// the client's limiter between batches.
func (c *channelClient) eventLoop(ctx context.Context, sub *subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.wake:
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}
		for _, id := range sub.take() {
			msg, _ := json.Marshal(event{Event: EventFrameAvailable, TextureID: id})
			if !c.enqueue(ctx, msg) {
				return
			}
		}
	}
}

func (c *channelClient) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = c.conn.Close()
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("server: channel write failed", "err", err)
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

// call decodes one request and runs it through the dispatcher.
func (s *Server) call(data []byte) response {
	var req request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return response{ID: req.ID, Error: &wireError{Code: dispatch.CodeBadArgs, Message: "malformed request"}}
	}
	if req.Args == nil {
		req.Args = dispatch.Args{}
	}
	result, err := s.disp.Handle(req.Method, req.Args)
	if err != nil {
		var de *dispatch.Error
		if !errors.As(err, &de) {
			de = &dispatch.Error{Code: dispatch.CodeOperationFailed, Message: err.Error()}
		}
		s.log.Debug("server: call failed", "method", req.Method, "code", de.Code, "err", err)
		return response{ID: req.ID, Error: &wireError{Code: de.Code, Message: de.Message}}
	}
	return response{ID: req.ID, Result: result}
}
