package websocket

import (
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
	"sync"
)

// ConnectionManager owns the user -> connections registry and delivers
// notification frames to it. It also tracks every live socket, authenticated
// or not, so keep-alive can reach sockets that have not sent auth yet.
type ConnectionManager struct {
	userConns map[string]map[domain.Connection]struct{}
	live      map[domain.Connection]struct{}
	mutex     sync.RWMutex
	log       logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		userConns: make(map[string]map[domain.Connection]struct{}),
		live:      make(map[domain.Connection]struct{}),
		log:       log,
	}
}

// Track records a socket from the moment it is opened.
func (cm *ConnectionManager) Track(conn domain.Connection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.live[conn] = struct{}{}
}

// Untrack forgets a socket once its transport has closed. Idempotent.
func (cm *ConnectionManager) Untrack(conn domain.Connection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	delete(cm.live, conn)
}

func (cm *ConnectionManager) Register(userID string, conn domain.Connection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	conns, exists := cm.userConns[userID]
	if !exists {
		conns = make(map[domain.Connection]struct{})
		cm.userConns[userID] = conns
	}
	conns[conn] = struct{}{}

	cm.log.Info("Connection registered", "user_id", userID, "connection_id", conn.ID(), "user_connections", len(conns))
}

func (cm *ConnectionManager) Unregister(userID string, conn domain.Connection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	conns, exists := cm.userConns[userID]
	if !exists {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}

	delete(conns, conn)
	if len(conns) == 0 {
		delete(cm.userConns, userID)
	}

	cm.log.Info("Connection unregistered", "user_id", userID, "connection_id", conn.ID(), "user_connections", len(conns))
}

func (cm *ConnectionManager) IsConnected(userID string) bool {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	return len(cm.userConns[userID]) > 0
}

// GetConnectionsForUser returns a snapshot; callers may write to it without
// holding the registry lock.
func (cm *ConnectionManager) GetConnectionsForUser(userID string) []domain.Connection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	conns := cm.userConns[userID]
	if len(conns) == 0 {
		return nil
	}

	snapshot := make([]domain.Connection, 0, len(conns))
	for conn := range conns {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

func (cm *ConnectionManager) connectedUserIDs() []string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	ids := make([]string, 0, len(cm.userConns))
	for userID := range cm.userConns {
		ids = append(ids, userID)
	}
	return ids
}

// OpenConnections returns every tracked socket that reports itself open,
// including anonymous ones.
func (cm *ConnectionManager) OpenConnections() []domain.Connection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	open := make([]domain.Connection, 0, len(cm.live))
	for conn := range cm.live {
		if conn.IsOpen() {
			open = append(open, conn)
		}
	}
	return open
}

func (cm *ConnectionManager) Stats() (users, connections int) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	users = len(cm.userConns)
	for _, conns := range cm.userConns {
		connections += len(conns)
	}
	return users, connections
}

func (cm *ConnectionManager) SendToUser(userID string, event domain.NotificationEvent) bool {
	payload, ok := cm.encode(event)
	if !ok {
		return false
	}
	return cm.sendPayload(userID, event.ID, payload)
}

func (cm *ConnectionManager) SendToMany(userIDs []string, event domain.NotificationEvent) []domain.DeliveryResult {
	results := make([]domain.DeliveryResult, 0, len(userIDs))
	payload, ok := cm.encode(event)

	for _, userID := range userIDs {
		delivered := ok && cm.sendPayload(userID, event.ID, payload)
		results = append(results, domain.DeliveryResult{UserID: userID, Delivered: delivered})
	}
	return results
}

func (cm *ConnectionManager) Broadcast(event domain.NotificationEvent, excludeUserIDs []string) []domain.DeliveryResult {
	excluded := make(map[string]struct{}, len(excludeUserIDs))
	for _, id := range excludeUserIDs {
		excluded[id] = struct{}{}
	}

	payload, ok := cm.encode(event)
	userIDs := cm.connectedUserIDs()
	results := make([]domain.DeliveryResult, 0, len(userIDs))

	for _, userID := range userIDs {
		if _, skip := excluded[userID]; skip {
			continue
		}
		delivered := ok && cm.sendPayload(userID, event.ID, payload)
		results = append(results, domain.DeliveryResult{UserID: userID, Delivered: delivered})
	}

	cm.log.Info("Broadcast notification", "notification_id", event.ID,
		"recipients", len(results), "excluded", len(excludeUserIDs))
	return results
}

// PingAll writes a keep-alive frame to every open tracked socket and returns
// how many writes were accepted.
func (cm *ConnectionManager) PingAll() int {
	payload, err := domain.EncodeServerFrame(domain.PingFrame{})
	if err != nil {
		cm.log.Error("Failed to encode ping frame", "error", err)
		return 0
	}

	sent := 0
	for _, conn := range cm.OpenConnections() {
		if err := conn.Send(payload); err != nil {
			cm.log.Warn("Failed to send ping", "connection_id", conn.ID(), "error", err)
			continue
		}
		sent++
	}
	return sent
}

func (cm *ConnectionManager) encode(event domain.NotificationEvent) ([]byte, bool) {
	payload, err := domain.EncodeServerFrame(domain.NotificationFrame{Event: event})
	if err != nil {
		cm.log.Error("Failed to encode notification", "notification_id", event.ID, "error", err)
		return nil, false
	}
	return payload, true
}

func (cm *ConnectionManager) sendPayload(userID, notificationID string, payload []byte) bool {
	connections := cm.GetConnectionsForUser(userID)
	if len(connections) == 0 {
		cm.log.Info("Notification dropped, user not connected", "user_id", userID, "notification_id", notificationID)
		return false
	}

	sent := 0
	for _, conn := range connections {
		if !conn.IsOpen() {
			continue
		}
		if err := conn.Send(payload); err != nil {
			cm.log.Error("Failed to send message", "user_id", userID,
				"connection_id", conn.ID(), "notification_id", notificationID, "error", err)
			// Continue to other connections
			continue
		}
		sent++
	}

	if sent == 0 {
		cm.log.Info("Notification dropped, no open connection accepted it", "user_id", userID, "notification_id", notificationID)
	}
	return sent > 0
}
