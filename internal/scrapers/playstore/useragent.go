package playstore

import (
	_ "embed"
	"math/rand/v2"
	"strings"
)

//go:embed default_user_agents.txt
var defaultUserAgentsFile string

func defaultUserAgents() []string {
	var out []string
	for _, line := range strings.Split(defaultUserAgentsFile, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// userAgents hands out a random user agent per request.
type userAgents struct {
	list []string
}

func newUserAgents(list []string) userAgents {
	filtered := make([]string, 0, len(list))
	for _, ua := range list {
		if strings.TrimSpace(ua) != "" {
			filtered = append(filtered, ua)
		}
	}
	if len(filtered) == 0 {
		filtered = defaultUserAgents()
	}
	return userAgents{list: filtered}
}

func (u userAgents) next() string {
	return u.list[rand.IntN(len(u.list))]
}
