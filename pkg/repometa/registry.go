package repometa

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pbmd/forgescan/internal/extractor"
)

// Registry maps forge hosts to metadata clients.
type Registry struct {
	clients map[string]Client
	aliases map[string]string
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
	}
}

func normalizeHost(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}

// Register adds a client under its host.
func (r *Registry) Register(client Client) error {
	if client == nil {
		return fmt.Errorf("client cannot be nil")
	}

	host := normalizeHost(client.Host())
	if host == "" {
		return fmt.Errorf("client must have a non-empty host")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[host]; exists {
		return fmt.Errorf("client for host '%s' already registered", host)
	}

	if _, exists := r.aliases[host]; exists {
		return fmt.Errorf("host '%s' is already an alias", host)
	}

	r.clients[host] = client

	return nil
}

// RegisterAlias makes alias resolve to the client registered for host.
func (r *Registry) RegisterAlias(alias, host string) error {
	alias, host = normalizeHost(alias), normalizeHost(host)
	if alias == "" || host == "" {
		return fmt.Errorf("alias and host cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[host]; !exists {
		return fmt.Errorf("host '%s' not found", host)
	}

	if _, exists := r.aliases[alias]; exists {
		return fmt.Errorf("alias '%s' already registered", alias)
	}

	if _, exists := r.clients[alias]; exists {
		return fmt.Errorf("alias '%s' conflicts with a registered host", alias)
	}

	r.aliases[alias] = host

	return nil
}

// Get returns the client for host or one of its aliases.
func (r *Registry) Get(host string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := normalizeHost(host)

	if client, ok := r.clients[key]; ok {
		return client, nil
	}

	if target, ok := r.aliases[key]; ok {
		if client, ok := r.clients[target]; ok {
			return client, nil
		}
	}

	return nil, fmt.Errorf("no metadata client registered for host '%s'", host)
}

// Has reports whether host (or an alias) resolves to a client.
func (r *Registry) Has(host string) bool {
	_, err := r.Get(host)
	return err == nil
}

// List returns the registered hosts in alphabetical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]string, 0, len(r.clients))
	for host := range r.clients {
		hosts = append(hosts, host)
	}

	sort.Strings(hosts)

	return hosts
}

// ListWithAliases returns every host with its sorted aliases.
func (r *Registry) ListWithAliases() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]string, len(r.clients))
	for host := range r.clients {
		result[host] = []string{}
	}

	for alias, host := range r.aliases {
		result[host] = append(result[host], alias)
	}

	for host := range result {
		sort.Strings(result[host])
	}

	return result
}

// RepoInfo looks up the repository behind a canonical link.
func (r *Registry) RepoInfo(ctx context.Context, link string) (*RepoInfo, error) {
	host := HostOf(link)

	client, err := r.Get(host)
	if err != nil {
		return nil, err
	}

	return client.RepoInfo(ctx, extractor.Decompose(link))
}

// HostOf returns the lowercased host of a canonical link
// ("https://GitHub.com/a/b/" gives "github.com"), or "".
func HostOf(link string) string {
	segments := strings.Split(link, "/")
	if len(segments) < 3 {
		return ""
	}

	return normalizeHost(segments[2])
}
