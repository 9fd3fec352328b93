package constants

// Route paths shared between the router and clients.
const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathTalk    = "/api/talk"
	PathSlides  = "/api/slides"
	PathState   = "/api/state"
	PathClients = "/api/clients"
	PathCommand = "/api/command"
	PathWS      = "/api/ws"
)
