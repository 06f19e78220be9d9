package parser

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"timetabler/internal/config"
	"timetabler/internal/domain"
	"timetabler/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentParser, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers returns the sorted names of all registered providers.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Build assembles the parser described by cfg.Mode. Single mode uses the
// primary provider only. Fallback chains the configured providers in
// order. Dual runs primary and secondary in parallel.
func Build(cfg *config.ParserConfig, log zerolog.Logger) (port.DocumentParser, error) {
	primaryCfg := cfg.PrimaryConfig()
	primary, err := NewParser(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("creating primary parser: %w", err)
	}

	switch domain.ParseMode(cfg.Mode) {
	case domain.ParseModeSingle, "":
		return primary, nil

	case domain.ParseModeFallback:
		parsers := []port.DocumentParser{primary}
		names := []string{primaryCfg.Provider}
		for _, extra := range []*config.ParserProviderConfig{cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
			if extra == nil {
				continue
			}
			p, err := NewParser(extra)
			if err != nil {
				return nil, fmt.Errorf("creating %s parser: %w", extra.Provider, err)
			}
			parsers = append(parsers, p)
			names = append(names, extra.Provider)
		}
		if len(parsers) == 1 {
			return primary, nil
		}
		return NewFallbackParser(parsers, names, log), nil

	case domain.ParseModeDual:
		secondaryCfg := cfg.SecondaryConfig()
		if secondaryCfg == nil {
			return nil, fmt.Errorf("parser mode %q requires a secondary provider", cfg.Mode)
		}
		secondary, err := NewParser(secondaryCfg)
		if err != nil {
			return nil, fmt.Errorf("creating secondary parser: %w", err)
		}
		return NewMergeParser(primary, secondary, log), nil

	default:
		return nil, fmt.Errorf("unknown parser mode: %s", cfg.Mode)
	}
}
