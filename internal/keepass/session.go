package keepass

import "sync"

// Session holds the last successfully established connection. It is an
// explicit object owned by the caller rather than hidden package state;
// the CLI owns one per process, the MCP server one per server. The
// mutex exists for the MCP path, where tool calls may be concurrent.
type Session struct {
	mu      sync.RWMutex
	current *Connection
}

// Set installs a connection, overwriting the previous one. The replaced
// connection's secret is wiped.
func (s *Session) Set(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current != c {
		s.current.Close()
	}
	s.current = c
}

// Current returns the last-established connection, or false when no
// connect has succeeded yet.
func (s *Session) Current() (*Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || !s.current.Connected {
		return nil, false
	}
	return s.current, true
}

// Clear drops and wipes the current connection.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Close()
	}
	s.current = nil
}
