package browser

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/tugas/pkg/logging"
)

// DefaultBlockedResourceTypes are aborted because the flow never needs them.
var DefaultBlockedResourceTypes = []string{"image", "fetch", "media", "font", "stylesheet"}

// NetworkPolicy decides which outgoing page requests may proceed.
type NetworkPolicy struct {
	blockedTypes map[string]bool
	blockedURLs  []glob.Glob
}

// NewNetworkPolicy creates a policy that aborts requests of the given resource
// types and requests whose URL matches any of the glob patterns.
func NewNetworkPolicy(resourceTypes, urlPatterns []string) (*NetworkPolicy, error) {
	p := &NetworkPolicy{blockedTypes: make(map[string]bool, len(resourceTypes))}

	for _, rt := range resourceTypes {
		p.blockedTypes[rt] = true
	}

	for _, pattern := range urlPatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked URL pattern '%s': %w", pattern, err)
		}
		p.blockedURLs = append(p.blockedURLs, g)
	}

	return p, nil
}

// DefaultNetworkPolicy blocks DefaultBlockedResourceTypes only.
func DefaultNetworkPolicy() *NetworkPolicy {
	p, _ := NewNetworkPolicy(DefaultBlockedResourceTypes, nil)
	return p
}

// Allow reports whether a request may continue.
func (p *NetworkPolicy) Allow(resourceType, url string) bool {
	if p.blockedTypes[resourceType] {
		return false
	}
	for _, pattern := range p.blockedURLs {
		if pattern.Match(url) {
			return false
		}
	}
	return true
}

// Install intercepts every request made by page. It must run before the
// first navigation.
func (p *NetworkPolicy) Install(page playwright.Page, logger *logging.Logger) error {
	err := page.Route("**/*", func(route playwright.Route) {
		req := route.Request()
		if p.Allow(req.ResourceType(), req.URL()) {
			if err := route.Continue(); err != nil {
				logger.Debugf("continue %s failed: %v", req.URL(), err)
			}
			return
		}
		logger.Debugf("blocked %s %s", req.ResourceType(), req.URL())
		if err := route.Abort(); err != nil {
			logger.Debugf("abort %s failed: %v", req.URL(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to install request filter: %w", err)
	}
	return nil
}
