package provider

import (
	"errors"
	"strings"
)

var ErrProviderNotSupported = errors.New("provider is not supported")

type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	items := make(map[string]Provider, len(providers))
	for _, p := range providers {
		items[strings.ToLower(p.ID())] = p
	}
	return &Registry{providers: items}
}

func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, ErrProviderNotSupported
	}
	return p, nil
}
