package service

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/internal/errs"
	"github.com/slidecast/presentation-service/pkg/model"
)

// ClientInfo describes one connected client for the presence endpoint.
type ClientInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Addr        string    `json:"addr"`
	ConnectedAt time.Time `json:"connected_at"`
}

type clientEntry struct {
	info ClientInfo
	rx   *Latest[model.Notification]
}

// ClientService tracks connected clients and fans out notifications.
// Each client owns a private last-value-wins slot, so a slow reader only
// ever observes the newest truth, never a queue of intermediate states.
type ClientService struct {
	mu         sync.RWMutex
	clients    map[string]*clientEntry
	maxClients int
	log        *zap.Logger
}

// NewClientService creates the registry with the given capacity cap.
func NewClientService(maxClients int, log *zap.Logger) *ClientService {
	return &ClientService{
		clients:    make(map[string]*clientEntry),
		maxClients: maxClients,
		log:        log,
	}
}

// Register mints a ClientId, hands out the client's notification slot
// seeded with the initial notification, and announces the connection to
// the other clients. Fails with errs.ErrTooManyClients once the cap is
// reached; closed-receiver leftovers are swept first so a full registry
// of dead connections does not lock new clients out.
func (s *ClientService) Register(name string, addr net.Addr, initial model.Notification) (string, *Latest[model.Notification], error) {
	s.sweep()

	s.mu.Lock()
	if len(s.clients) >= s.maxClients {
		s.mu.Unlock()
		return "", nil, errs.ErrTooManyClients
	}

	id := uuid.NewString()
	addrStr := ""
	if addr != nil {
		addrStr = addr.String()
	}
	entry := &clientEntry{
		info: ClientInfo{
			ID:          id,
			Name:        name,
			Addr:        addrStr,
			ConnectedAt: time.Now(),
		},
		rx: NewLatest(initial),
	}
	s.clients[id] = entry
	active := len(s.clients)
	s.mu.Unlock()

	s.log.Info("client registered",
		zap.String("client_id", id),
		zap.String("name", name),
		zap.String("addr", addrStr),
		zap.Int("active_clients", active))

	s.NotifyOthers(id, model.ClientConnectedNotification(id, name))
	return id, entry.rx, nil
}

// Unregister removes the client, closes its slot, and announces the
// disconnection to the remaining clients. Unknown ids are ignored.
func (s *ClientService) Unregister(id string) {
	s.mu.Lock()
	entry, ok := s.clients[id]
	if ok {
		delete(s.clients, id)
	}
	active := len(s.clients)
	s.mu.Unlock()

	if !ok {
		return
	}
	entry.rx.Close()

	s.log.Info("client unregistered",
		zap.String("client_id", id),
		zap.String("name", entry.info.Name),
		zap.Int("active_clients", active))

	s.NotifyAll(model.ClientDisconnectedNotification(id, entry.info.Name))
}

// NotifyAll fans the notification out to every registered client.
func (s *ClientService) NotifyAll(n model.Notification) {
	for _, entry := range s.snapshot() {
		entry.rx.Set(n)
	}
}

// NotifyOthers fans the notification out to everyone except one client.
func (s *ClientService) NotifyOthers(exclude string, n model.Notification) {
	for id, entry := range s.snapshot() {
		if id == exclude {
			continue
		}
		entry.rx.Set(n)
	}
}

// NotifyClient delivers a notification to a single client.
func (s *ClientService) NotifyClient(id string, n model.Notification) error {
	s.mu.RLock()
	entry, ok := s.clients[id]
	s.mu.RUnlock()
	if !ok {
		return errs.ErrClientNotFound
	}
	entry.rx.Set(n)
	return nil
}

// Clients returns a snapshot of connected-client infos for presence UIs.
func (s *ClientService) Clients() []ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]ClientInfo, 0, len(s.clients))
	for _, entry := range s.clients {
		infos = append(infos, entry.info)
	}
	return infos
}

// ActiveClients returns the number of registered clients.
func (s *ClientService) ActiveClients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// CleanupTask periodically sweeps entries whose receiver is closed,
// covering connections that died without a clean unregister. Blocks
// until the context is cancelled.
func (s *ClientService) CleanupTask(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sweep(); removed > 0 {
				s.log.Info("cleaned up disconnected clients",
					zap.Int("removed", removed),
					zap.Int("active_clients", s.ActiveClients()))
			}
		}
	}
}

func (s *ClientService) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.clients {
		if entry.rx.Closed() {
			delete(s.clients, id)
			removed++
		}
	}
	return removed
}

// snapshot copies the entry map so fan-out never writes while holding
// the registry lock.
func (s *ClientService) snapshot() map[string]*clientEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[string]*clientEntry, len(s.clients))
	for id, entry := range s.clients {
		entries[id] = entry
	}
	return entries
}
