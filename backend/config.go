package main

import (
	"sync"

	"github.com/AgainTri412/gomoku/engine"
)

// Config is the runtime configuration surface exposed over /api/config.
// Search fields map one to one onto engine.SearchLimits; the rest are
// server and persistence knobs.
type Config struct {
	AiMaxDepth        int    `json:"ai_max_depth"`
	AiMaxNodes        uint64 `json:"ai_max_nodes"`
	AiTimeLimitMs     uint64 `json:"ai_time_limit_ms"`
	AiPanicExtraMs    uint64 `json:"ai_panic_extra_ms"`
	AiEnableNullMove  bool   `json:"ai_enable_null_move"`
	AiEnablePanicMode bool   `json:"ai_enable_panic_mode"`

	TtSize              int    `json:"tt_size"`
	TtEnablePersistence bool   `json:"tt_enable_persistence"`
	TtPersistencePath   string `json:"tt_persistence_path"`

	ListenAddr string `json:"listen_addr"`
}

func DefaultConfig() Config {
	limits := engine.DefaultSearchLimits()
	return Config{
		AiMaxDepth:        limits.MaxDepth,
		AiMaxNodes:        limits.MaxNodes,
		AiTimeLimitMs:     limits.TimeLimitMs,
		AiPanicExtraMs:    limits.PanicExtraMs,
		AiEnableNullMove:  limits.EnableNullMove,
		AiEnablePanicMode: limits.EnablePanicMode,

		TtSize:              engine.DefaultTTSize,
		TtEnablePersistence: true,
		TtPersistencePath:   "tt_snapshot.bin",

		ListenAddr: ":8080",
	}
}

// SearchLimits translates the config snapshot into engine limits.
func (c Config) SearchLimits() engine.SearchLimits {
	return engine.SearchLimits{
		MaxDepth:        c.AiMaxDepth,
		MaxNodes:        c.AiMaxNodes,
		TimeLimitMs:     c.AiTimeLimitMs,
		PanicExtraMs:    c.AiPanicExtraMs,
		EnableNullMove:  c.AiEnableNullMove,
		EnablePanicMode: c.AiEnablePanicMode,
	}
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
