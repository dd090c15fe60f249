package main

import (
	"fmt"

	"credence/internal/fetch"
	"credence/internal/judge"
	"credence/internal/logging"
	"credence/internal/pipeline"
	"credence/internal/registry"
	"credence/internal/score"
)

// loadRegistry reads the configured registry file, or returns an empty
// registry when no path is set.
func loadRegistry() (*registry.Registry, error) {
	if cfg.RegistryPath == "" {
		logging.New("cli").Warn("no registry configured, ownership flags will not fire")
		return registry.Empty(), nil
	}
	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return nil, err
	}
	logging.New("cli").Info("registry loaded", "path", cfg.RegistryPath, "domains", reg.Len())
	return reg, nil
}

// buildEvaluator wires the collector, registry, and optional judge into
// a ready pipeline. The returned cleanup closes the fetch cache.
func buildEvaluator(mode score.Mode) (*pipeline.Evaluator, *registry.Registry, func(), error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, nil, err
	}

	var cache *fetch.Cache
	cleanup := func() {}
	if cfg.Fetch.CachePath != "" {
		cache, err = fetch.OpenCache(cfg.Fetch.CachePath, cfg.Fetch.CacheMaxAge())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open fetch cache: %w", err)
		}
		cleanup = func() { cache.Close() }
	}
	client := fetch.NewClient(cfg.Fetch, cache)

	var j *judge.Judge
	if mode != score.ModeHeuristic {
		backend, err := judge.NewOpenAIBackend(cfg.Judge)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		j = judge.New(backend, cfg.Judge, cfg.Policy)
	}

	return pipeline.NewEvaluator(client, reg, j, mode, cfg.Policy), reg, cleanup, nil
}
