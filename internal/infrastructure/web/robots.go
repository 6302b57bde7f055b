package web

import (
	"context"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy caches robots.txt groups per host.
type RobotsPolicy struct {
	client *Client
	agent  string

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

// NewRobotsPolicy evaluates rules for the client's User-Agent.
func NewRobotsPolicy(client *Client) *RobotsPolicy {
	return &RobotsPolicy{
		client: client,
		agent:  client.UserAgent(),
		groups: map[string]*robotstxt.Group{},
	}
}

// Allowed reports whether the page may be fetched. Unreachable or broken robots.txt allows everything.
func (p *RobotsPolicy) Allowed(ctx context.Context, page *url.URL) bool {
	key := page.Scheme + "://" + page.Host

	p.mu.Lock()
	group, cached := p.groups[key]
	p.mu.Unlock()

	if !cached {
		group = p.load(ctx, key)
		p.mu.Lock()
		p.groups[key] = group
		p.mu.Unlock()
	}

	if group == nil {
		return true
	}
	path := page.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (p *RobotsPolicy) load(ctx context.Context, origin string) *robotstxt.Group {
	resp, err := p.client.Get(ctx, origin+"/robots.txt")
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(p.agent)
}
