package journal

import "time"

// ClientConnection records one client connect/disconnect pair (GORM).
type ClientConnection struct {
	ID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID       string     `gorm:"type:uuid;not null;index"`
	Name           string     `gorm:"size:128"`
	ConnectedAt    time.Time  `gorm:"column:connected_at;not null"`
	DisconnectedAt *time.Time `gorm:"column:disconnected_at"`
}

func (ClientConnection) TableName() string { return "client_connections" }

// CommandEvent records one handled command and the phase it produced (GORM).
type CommandEvent struct {
	ID              string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID        string    `gorm:"size:64;not null;index"`
	Command         string    `gorm:"size:32;not null"`
	Slide           *int      `gorm:"column:slide"`
	ResultType      string    `gorm:"size:32;not null"`
	ResultPhase     string    `gorm:"size:16"`
	TotalDurationMS int64     `gorm:"column:total_duration_ms"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (CommandEvent) TableName() string { return "command_events" }
