// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements the caller side of the bridge protocol:
// dial, authenticate, and issue correlated requests with per-call
// timeouts through a context.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stagehand-foundation/stagehand/wire"
)

// ErrConnectionLost is returned by requests still pending when the
// connection fails or closes.
var ErrConnectionLost = errors.New("client: connection lost")

// Client is one authenticated bridge connection. Safe for concurrent
// use: requests from multiple goroutines are correlated by id.
type Client struct {
	conn   net.Conn
	logger *slog.Logger

	capabilities wire.Capabilities
	methods      map[string]bool

	nextID  atomic.Int64
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan wire.Response
	failed  error

	done chan struct{}
}

// Connect dials the bridge, performs the hello handshake, and returns
// an authenticated client. The ctx deadline bounds the dial and the
// handshake together.
func Connect(ctx context.Context, address, token string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("client: dialing %s: %w", address, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	hello, err := json.Marshal(wire.Hello{Type: wire.TypeHello, Token: token})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: encoding hello: %w", err)
	}
	if _, err := conn.Write(append(hello, '\n')); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: sending hello: %w", err)
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: reading handshake reply: %w", err)
	}

	var reply struct {
		Type         string            `json:"type"`
		Error        string            `json:"error"`
		Capabilities wire.Capabilities `json:"capabilities"`
	}
	if err := json.Unmarshal(line, &reply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: malformed handshake reply: %w", err)
	}
	if reply.Type != wire.TypeHelloOK {
		conn.Close()
		return nil, fmt.Errorf("client: authentication rejected: %s", reply.Error)
	}

	conn.SetDeadline(time.Time{})

	c := &Client{
		conn:         conn,
		logger:       logger,
		capabilities: reply.Capabilities,
		methods:      make(map[string]bool, len(reply.Capabilities.Methods)),
		pending:      make(map[int64]chan wire.Response),
		done:         make(chan struct{}),
	}
	for _, method := range reply.Capabilities.Methods {
		c.methods[method] = true
	}
	go c.readLoop(reader)
	return c, nil
}

// Capabilities returns the server's capability announcement.
func (c *Client) Capabilities() wire.Capabilities { return c.capabilities }

// Supports reports whether the server announced the method.
func (c *Client) Supports(method string) bool { return c.methods[method] }

// Done is closed when the connection has failed or closed.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close shuts the connection down. Pending requests fail with
// ErrConnectionLost.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Request issues one method call and waits for its response. The ctx
// deadline is the per-call timeout; a timed-out request stops waiting
// here but the engine may still execute it — the late response is
// dropped as unmatched.
func (c *Client) Request(ctx context.Context, method string, params any) (any, error) {
	encoded, err := encodeParams(params)
	if err != nil {
		return nil, err
	}

	id := c.nextID.Add(1)
	ch := make(chan wire.Response, 1)

	c.mu.Lock()
	if c.failed != nil {
		failed := c.failed
		c.mu.Unlock()
		return nil, failed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	request, err := json.Marshal(wire.Request{ID: id, Method: method, Params: encoded})
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("client: encoding request: %w", err)
	}

	c.writeMu.Lock()
	_, err = c.conn.Write(append(request, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("client: sending request: %w", err)
	}

	select {
	case response, ok := <-ch:
		if !ok {
			return nil, c.failure()
		}
		if !response.OK {
			if response.Error == nil {
				return nil, fmt.Errorf("client: request %d failed without an error payload", id)
			}
			return nil, response.Error
		}
		return response.Result, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, fmt.Errorf("client: request %d (%s): %w", id, method, ctx.Err())
	}
}

func encodeParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		return raw, nil
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("client: encoding params: %w", err)
	}
	return encoded, nil
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed != nil {
		return c.failed
	}
	return ErrConnectionLost
}

// readLoop delivers responses to their pending requests. Responses
// with no id or an unmatched id are dropped: they belong to requests
// the caller already gave up on.
func (c *Client) readLoop(reader *bufio.Reader) {
	defer close(c.done)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		var response wire.Response
		if err := json.Unmarshal(scanner.Bytes(), &response); err != nil {
			c.logger.Debug("dropping malformed response line", "error", err)
			continue
		}
		if response.ID == nil {
			c.logger.Debug("dropping response without id",
				"error", errorMessage(response.Error))
			continue
		}

		c.mu.Lock()
		ch, waiting := c.pending[*response.ID]
		if waiting {
			delete(c.pending, *response.ID)
		}
		c.mu.Unlock()

		if !waiting {
			c.logger.Debug("dropping unmatched response", "id", *response.ID)
			continue
		}
		ch <- response
	}

	// Connection gone: fail everything still pending.
	err := scanner.Err()
	if err == nil {
		err = ErrConnectionLost
	} else {
		err = fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}

	c.mu.Lock()
	c.failed = err
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	c.conn.Close()
}

func errorMessage(err *wire.Error) string {
	if err == nil {
		return ""
	}
	return err.Message
}
