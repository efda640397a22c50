package ocr

import (
	"fmt"
	"sort"
	"sync"

	"billextract/internal/config"
	"billextract/internal/port"
)

// ProviderFactory creates a TextExtractor from a provider config.
type ProviderFactory func(cfg *config.OCRProviderConfig) (port.TextExtractor, error)

var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers an OCR provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewExtractor creates a TextExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ocr provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the configured extractor chain: the primary provider,
// wrapped in a FallbackExtractor when a secondary provider is configured.
func NewFromConfig(cfg *config.OCRConfig, opts ...FallbackOption) (port.TextExtractor, error) {
	primaryCfg := cfg.PrimaryConfig()
	primary, err := NewExtractor(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := NewExtractor(secondaryCfg)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	return NewFallbackExtractor(
		[]port.TextExtractor{primary, secondary},
		[]string{primaryCfg.Provider, secondaryCfg.Provider},
		opts...,
	), nil
}
