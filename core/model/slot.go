package model

import (
	"strings"
	"time"
)

// SlotRequest is sent to the remote allocator on every poll.
type SlotRequest struct {
	ServerURL       string `json:"server_url"`
	CooldownSeconds int    `json:"cooldown_seconds"`
}

// Cooldown returns CooldownSeconds as a duration.
func (r SlotRequest) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// Server is a generation backend sharing one slot pool.
type Server struct {
	Name            string `json:"name"`
	BaseURL         string `json:"base_url"`
	CooldownSeconds int    `json:"cooldown_seconds"`
}

// Matches reports whether endpoint lives under the server base URL.
func (s Server) Matches(endpoint string) bool {
	return s.BaseURL != "" && strings.HasPrefix(endpoint, s.BaseURL)
}
