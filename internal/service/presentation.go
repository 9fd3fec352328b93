package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/pkg/model"
)

// EventRecorder receives a copy of session events for journaling (optional).
type EventRecorder interface {
	RecordCommand(ctx context.Context, clientID string, cmd model.Command, result model.Notification)
	RecordConnection(ctx context.Context, clientID, name string, connected bool)
}

// PresentationService is a thin coordinator over the talk state machine
// and the client registry: every handled command and every reload is
// broadcast to all connected clients.
type PresentationService struct {
	talks     *TalkService
	clients   *ClientService
	startedAt time.Time
	recorder  EventRecorder
	ctx       context.Context
	log       *zap.Logger
}

// NewPresentationService wires the two services together.
func NewPresentationService(talks *TalkService, clients *ClientService, log *zap.Logger) *PresentationService {
	return &PresentationService{
		talks:     talks,
		clients:   clients,
		startedAt: time.Now(),
		ctx:       context.Background(),
		log:       log,
	}
}

// SetRecorder attaches the optional session journal.
func (p *PresentationService) SetRecorder(r EventRecorder) { p.recorder = r }

// SetContext sets the app context used for journaling (shutdown propagation).
func (p *PresentationService) SetContext(ctx context.Context) { p.ctx = ctx }

// Talks exposes the talk store for snapshot handlers.
func (p *PresentationService) Talks() *TalkService { return p.talks }

// Clients exposes the registry for the transport endpoint.
func (p *PresentationService) Clients() *ClientService { return p.clients }

// HandleCommand runs one command through the state machine, broadcasts
// the resulting notification to all clients, and returns it.
func (p *PresentationService) HandleCommand(clientID string, cmd model.Command) model.Notification {
	start := time.Now()
	notification := p.talks.HandleCommand(cmd)
	p.clients.NotifyAll(notification)

	p.log.Debug("command handled",
		zap.String("command", string(cmd.Command)),
		zap.String("client_id", clientID),
		zap.Duration("took", time.Since(start)),
		zap.Int("active_clients", p.clients.ActiveClients()))

	if p.recorder != nil {
		p.recorder.RecordCommand(p.ctx, clientID, cmd, notification)
	}
	return notification
}

// ReloadTalk swaps the deck and broadcasts the TalkChange notification.
func (p *PresentationService) ReloadTalk(newTalk model.Talk) error {
	notification, err := p.talks.ReloadTalk(newTalk)
	if err != nil {
		return err
	}
	p.clients.NotifyAll(notification)
	return nil
}

// CurrentState returns a snapshot of the presentation state.
func (p *PresentationService) CurrentState() model.State {
	return p.talks.CurrentState()
}

// RecordConnection forwards presence changes to the journal, if any.
func (p *PresentationService) RecordConnection(clientID, name string, connected bool) {
	if p.recorder != nil {
		p.recorder.RecordConnection(p.ctx, clientID, name, connected)
	}
}

// Health describes the server for the health endpoint.
type Health struct {
	Status        string        `json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	Uptime        time.Duration `json:"uptime_ms"`
	Talk          string        `json:"talk"`
	ActiveClients int           `json:"active_clients"`
}

// Health returns the current server health snapshot.
func (p *PresentationService) Health() Health {
	return Health{
		Status:        "ok",
		StartedAt:     p.startedAt,
		Uptime:        time.Since(p.startedAt) / time.Millisecond,
		Talk:          p.talks.Talk().Title,
		ActiveClients: p.clients.ActiveClients(),
	}
}
