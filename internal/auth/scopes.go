package auth

// Known OAuth scopes used by the presence API.
const (
	ScopeSessionsRead  = "sessions:read"
	ScopePresenceWrite = "presence:write"
)
