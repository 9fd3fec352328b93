package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/slidecast/presentation-service/internal/errs"
	"github.com/slidecast/presentation-service/internal/service"
	"github.com/slidecast/presentation-service/pkg/model"
)

// WSHandler bridges WebSocket connections to the presentation service.
//
// Each accepted connection runs four cooperating tasks: a watcher reading
// the client's last-value slot, a sender writing frames to the socket, a
// receiver decoding commands, and a heartbeat injecting periodic Pongs.
// The first task to exit tears the whole session down and unregisters the
// client, so a half-alive session cannot keep accepting commands after
// its sender died.
type WSHandler struct {
	svc       *service.PresentationService
	upgrader  websocket.Upgrader
	heartbeat time.Duration
	maxMsg    int64
	log       *zap.Logger
}

// NewWSHandler creates the WebSocket endpoint handler.
func NewWSHandler(svc *service.PresentationService, readBuf, writeBuf int, maxMsgSize int64, heartbeat time.Duration, log *zap.Logger) *WSHandler {
	return &WSHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// Remote controllers connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		heartbeat: heartbeat,
		maxMsg:    maxMsgSize,
		log:       log,
	}
}

// ServeWS upgrades the request and runs the connection until any of the
// four tasks exits.
func (h *WSHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	if h.maxMsg > 0 {
		conn.SetReadLimit(h.maxMsg)
	}

	initial := model.StateNotification(h.svc.CurrentState())
	clientID, rx, err := h.svc.Clients().Register("", conn.RemoteAddr(), initial)
	if errors.Is(err, errs.ErrTooManyClients) {
		h.log.Warn("registration refused, registry full", zap.String("addr", conn.RemoteAddr().String()))
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, errs.ErrTooManyClients.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		return
	}
	if err != nil {
		h.log.Error("client registration failed", zap.Error(err))
		return
	}

	h.log.Info("websocket connection established",
		zap.String("client_id", clientID),
		zap.String("addr", conn.RemoteAddr().String()))

	h.runSession(c.Request.Context(), conn, clientID, rx)

	h.svc.Clients().Unregister(clientID)
	h.log.Info("websocket connection closed", zap.String("client_id", clientID))
}

func (h *WSHandler) runSession(ctx context.Context, conn *websocket.Conn, clientID string, rx *service.Latest[model.Notification]) {
	g, ctx := errgroup.WithContext(ctx)

	// Internal queue between producers (watcher, heartbeat, receiver
	// errors) and the single socket writer.
	queue := make(chan model.Notification, 16)

	g.Go(func() error { return h.watchTask(ctx, rx, queue) })
	g.Go(func() error { return h.sendTask(ctx, conn, clientID, queue) })
	g.Go(func() error { return h.receiveTask(ctx, conn, clientID, queue) })
	g.Go(func() error { return h.heartbeatTask(ctx, queue) })

	// The receiver blocks in conn.ReadMessage, which only fails when the
	// socket closes; force it once a sibling task errors out.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		h.log.Debug("session ended", zap.String("client_id", clientID), zap.Error(err))
	}
}

// watchTask observes the client's last-value slot and forwards each new
// notification into the internal queue.
func (h *WSHandler) watchTask(ctx context.Context, rx *service.Latest[model.Notification], queue chan<- model.Notification) error {
	var seq uint64
	for {
		n, next, err := rx.Next(ctx, seq)
		if err != nil {
			return err
		}
		seq = next
		select {
		case queue <- n:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sendTask serializes queued notifications onto the socket, exiting on
// the first write failure.
func (h *WSHandler) sendTask(ctx context.Context, conn *websocket.Conn, clientID string, queue <-chan model.Notification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-queue:
			data, err := n.Encode()
			if err != nil {
				h.log.Error("failed to serialize notification",
					zap.String("client_id", clientID), zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}

// receiveTask decodes incoming command frames and dispatches them.
// Malformed frames are answered with an Error notification to this
// client only; they never kill the connection. A client unregistering
// itself is a clean shutdown signal.
func (h *WSHandler) receiveTask(ctx context.Context, conn *websocket.Conn, clientID string, queue chan<- model.Notification) error {
	enqueue := func(n model.Notification) error {
		select {
		case queue <- n:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket read error", zap.String("client_id", clientID), zap.Error(err))
			}
			return err
		}
		if msgType != websocket.TextMessage {
			h.log.Warn("ignoring non-text frame", zap.String("client_id", clientID))
			continue
		}

		cmd, err := model.DecodeCommand(data)
		if err != nil {
			h.log.Warn("malformed command frame",
				zap.String("client_id", clientID),
				zap.ByteString("frame", data),
				zap.Error(err))
			if err := enqueue(model.ErrorNotification("invalid command format: " + err.Error())); err != nil {
				return err
			}
			continue
		}

		switch cmd.Command {
		case model.CommandRegister:
			// The id is server-minted at upgrade time; Register only
			// names the client and announces its presence.
			if err := enqueue(model.RegisteredNotification(clientID)); err != nil {
				return err
			}
			h.svc.Clients().NotifyOthers(clientID, model.ClientConnectedNotification(clientID, cmd.Name))
			h.svc.RecordConnection(clientID, cmd.Name, true)
			continue
		case model.CommandUnregister:
			if cmd.Client == clientID || cmd.Client == "" {
				h.log.Info("client unregistering itself", zap.String("client_id", clientID))
				return nil
			}
		}

		h.svc.HandleCommand(clientID, cmd)
	}
}

// heartbeatTask injects a Pong on a fixed interval as a liveness signal
// independent of client-initiated pings.
func (h *WSHandler) heartbeatTask(ctx context.Context, queue chan<- model.Notification) error {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			select {
			case queue <- model.PongNotification():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
