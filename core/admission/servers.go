package admission

import (
	"net/url"

	"github.com/kilianp07/slotgate/core/model"
)

// DefaultCooldownSeconds is the slot lifetime requested when neither the
// server nor the configuration sets one.
const DefaultCooldownSeconds = 60

// ServerSet maps endpoints to the server owning their slot pool.
type ServerSet struct {
	servers  []model.Server
	cooldown int
}

// NewServerSet creates a ServerSet. cooldown is the default slot lifetime in
// seconds for servers that do not set their own.
func NewServerSet(servers []model.Server, cooldown int) ServerSet {
	if cooldown <= 0 {
		cooldown = DefaultCooldownSeconds
	}
	return ServerSet{servers: append([]model.Server(nil), servers...), cooldown: cooldown}
}

// Resolve returns the slot key and cooldown for endpoint. The configured
// server with the longest matching base URL wins. Without a match the
// endpoint origin (scheme://host) is used with the default cooldown.
func (s ServerSet) Resolve(endpoint string) (serverURL string, cooldown int) {
	var best *model.Server
	for i := range s.servers {
		srv := &s.servers[i]
		if srv.Matches(endpoint) && (best == nil || len(srv.BaseURL) > len(best.BaseURL)) {
			best = srv
		}
	}
	if best != nil {
		cooldown = best.CooldownSeconds
		if cooldown <= 0 {
			cooldown = s.cooldown
		}
		return best.BaseURL, cooldown
	}
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host, s.cooldown
	}
	return endpoint, s.cooldown
}
