// Package client implements a resilient WebSocket client for the
// presentation service. It keeps one connection to the transport
// endpoint, exposes a command-send API plus a notification stream, and
// autonomously reconnects with exponential backoff when the socket
// drops, re-registering so the server hands it the current state.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/slidecast/presentation-service/pkg/model"
)

// Client maintains one logical session against the server across any
// number of physical connections. Safe for concurrent use.
type Client struct {
	cfg Config
	log *zap.Logger

	cmdCh    chan model.Command
	notifCh  chan model.Notification
	statusCh chan Status

	mu          sync.Mutex
	status      Status
	started     bool
	disposed    bool
	cancel      context.CancelFunc
	clientID    string
	lastApplied time.Time
	pingSentAt  time.Time
}

// New builds a client from cfg. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Client{
		cfg:      cfg,
		log:      log.Named("client"),
		cmdCh:    make(chan model.Command, cfg.SendBuffer),
		notifCh:  make(chan model.Notification, cfg.SendBuffer),
		statusCh: make(chan Status, 8),
		status:   Status{Kind: StatusClosed},
	}
}

// Connect starts the connection loop in the background and returns
// immediately. It may be called once per client.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.run(ctx)
	return nil
}

// SendCommand queues cmd for delivery on the current connection. It
// never blocks; a full queue or a dead connection is reported as an
// error rather than silently dropping the command.
func (c *Client) SendCommand(cmd model.Command) error {
	c.mu.Lock()
	disposed, kind := c.disposed, c.status.Kind
	c.mu.Unlock()
	if disposed {
		return ErrDisposed
	}
	if kind != StatusConnected {
		return ErrNotConnected
	}
	select {
	case c.cmdCh <- cmd:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Notifications streams server notifications to the embedder. The
// channel is never closed; watch StatusChanges for terminal states.
// Slow readers lose the oldest buffered entries, never the newest.
func (c *Client) Notifications() <-chan model.Notification {
	return c.notifCh
}

// StatusChanges streams connection lifecycle transitions.
func (c *Client) StatusChanges() <-chan Status {
	return c.statusCh
}

// Status returns the current lifecycle snapshot.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ClientID returns the server-minted id from the last Registered
// notification, empty before the first registration completes.
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// Close disposes the client: the connection loop stops, pending
// reconnect timers are abandoned, and every later operation returns
// ErrDisposed. One-way; a closed client cannot be restarted.
func (c *Client) Close() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.status = Status{Kind: StatusDisposed}
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.publishStatus(Status{Kind: StatusDisposed})
}

// run is the connection loop: dial, hold a session until it fails,
// back off, repeat. Exits on disposal, context cancellation or an
// exhausted retry budget.
func (c *Client) run(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil || c.isDisposed() {
			return
		}
		c.setStatus(Status{Kind: StatusConnecting, Attempt: attempt})

		conn, err := c.dial(ctx)
		if err == nil {
			attempt = 0
			c.setStatus(Status{Kind: StatusConnected})
			c.log.Info("connected", zap.String("url", c.cfg.URL))

			err = c.session(ctx, conn)
			if ctx.Err() != nil || c.isDisposed() {
				return
			}
			c.setStatus(Status{Kind: StatusClosed, Err: err})
			c.log.Warn("connection closed", zap.Error(err))
		} else {
			c.log.Warn("connect failed", zap.Error(err))
		}

		attempt++
		if c.cfg.MaxRetries >= 0 && attempt > c.cfg.MaxRetries {
			c.setStatus(Status{Kind: StatusError, Err: err})
			c.log.Error("retry budget exhausted", zap.Int("attempts", attempt-1), zap.Error(err))
			return
		}
		delay := c.reconnectDelay(attempt)
		c.setStatus(Status{Kind: StatusReconnecting, Attempt: attempt, Err: err})
		c.log.Info("reconnecting",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return conn, nil
}

// session drives one physical connection: a reader, a writer and a
// ping ticker race in a task group; the first to fail tears the others
// down. Registration is re-sent first thing on every connection so the
// server mints a fresh id and pushes the authoritative state.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	g, ctx := errgroup.WithContext(ctx)

	// Unblocks ReadMessage when a sibling task fails.
	g.Go(func() error {
		<-ctx.Done()
		conn.Close()
		return nil
	})

	g.Go(func() error { return c.readLoop(conn) })
	g.Go(func() error { return c.writeLoop(ctx, conn) })
	g.Go(func() error { return c.pingLoop(ctx) })

	return g.Wait()
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		n, err := model.DecodeNotification(data)
		if err != nil {
			c.log.Warn("malformed notification", zap.Error(err))
			continue
		}
		c.handle(n)
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn) error {
	reg := model.RegisterCommand("", c.cfg.Name, c.cfg.Renderer)
	if err := c.writeCommand(conn, reg); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.cmdCh:
			if err := c.writeCommand(conn, cmd); err != nil {
				return err
			}
		}
	}
}

func (c *Client) writeCommand(conn *websocket.Conn, cmd model.Command) error {
	data, err := cmd.Encode()
	if err != nil {
		return err
	}
	if cmd.Command == model.CommandPing {
		c.mu.Lock()
		c.pingSentAt = time.Now()
		c.mu.Unlock()
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// pingLoop queues a Ping on a fixed period, used only to log round-trip
// times. Liveness is the server heartbeat's job.
func (c *Client) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			select {
			case c.cmdCh <- model.NewCommand(model.CommandPing):
			default:
			}
		}
	}
}

// handle applies one inbound notification: book-keeping first, then
// delivery to the embedder. State-bearing notifications older than the
// last applied one are dropped, which is the only defence against
// reordering across a reconnect race.
func (c *Client) handle(n model.Notification) {
	switch n.Type {
	case model.NotificationRegistered:
		c.mu.Lock()
		c.clientID = n.Client
		c.mu.Unlock()
		c.log.Info("registered", zap.String("client", n.Client))

	case model.NotificationPong:
		c.mu.Lock()
		sent := c.pingSentAt
		c.mu.Unlock()
		if !sent.IsZero() {
			c.log.Debug("pong", zap.Duration("rtt", time.Since(sent)))
		}

	case model.NotificationState, model.NotificationTalkChange:
		c.mu.Lock()
		stale := n.Timestamp.Before(c.lastApplied)
		if !stale {
			c.lastApplied = n.Timestamp
		}
		c.mu.Unlock()
		if stale {
			c.log.Debug("dropping stale notification",
				zap.String("type", string(n.Type)),
				zap.Time("timestamp", n.Timestamp))
			return
		}
	}
	c.deliver(n)
}

// deliver pushes n to the embedder without ever blocking a socket
// task; when the buffer is full the oldest entry is evicted.
func (c *Client) deliver(n model.Notification) {
	for {
		select {
		case c.notifCh <- n:
			return
		default:
			select {
			case <-c.notifCh:
			default:
			}
		}
	}
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.status = s
	c.mu.Unlock()
	c.publishStatus(s)
}

func (c *Client) publishStatus(s Status) {
	for {
		select {
		case c.statusCh <- s:
			return
		default:
			select {
			case <-c.statusCh:
			default:
			}
		}
	}
}

func (c *Client) isDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
