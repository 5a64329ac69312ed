package payment

import (
	"sort"
	"sync"

	"github.com/datalake/server/internal/module/payment/provider"
)

// GatewayRegistry holds the configured payment gateways by provider name.
type GatewayRegistry struct {
	mu       sync.RWMutex
	gateways map[string]provider.Gateway
}

// NewGatewayRegistry creates an empty registry.
func NewGatewayRegistry() *GatewayRegistry {
	return &GatewayRegistry{gateways: make(map[string]provider.Gateway)}
}

// Register registers a gateway under its name.
func (r *GatewayRegistry) Register(g provider.Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.Name()] = g
}

// Get returns the gateway for name.
func (r *GatewayRegistry) Get(name string) (provider.Gateway, error) {
	if r == nil {
		return nil, ErrGatewayNotConfigured
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[name]
	if !ok {
		return nil, ErrGatewayNotConfigured
	}
	return g, nil
}

// Verifier returns the webhook verifier for name.
func (r *GatewayRegistry) Verifier(name string) (provider.WebhookVerifier, error) {
	g, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	v, ok := g.(provider.WebhookVerifier)
	if !ok {
		return nil, ErrGatewayNotConfigured
	}
	return v, nil
}

// Names returns the registered gateway names in sorted order.
func (r *GatewayRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
