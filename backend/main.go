package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AgainTri412/gomoku/engine"
)

type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type searchResponse struct {
	BestMove  apiMove             `json:"best_move"`
	Score     int                 `json:"score"`
	Depth     int                 `json:"depth"`
	IsMate    bool                `json:"is_mate"`
	IsTimeout bool                `json:"is_timeout"`
	ForcedWin bool                `json:"forced_win"`
	PV        []apiMove           `json:"pv"`
	Nodes     uint64              `json:"nodes"`
	QNodes    uint64              `json:"qnodes"`
	HashHits  uint64              `json:"hash_hits"`
	Limits    engine.SearchLimits `json:"limits"`
}

type cacheStatusResponse struct {
	Count         int     `json:"count"`
	Capacity      int     `json:"capacity"`
	Usage         float64 `json:"usage"`
	EntryBytes    uint64  `json:"entry_bytes"`
	UsedBytes     uint64  `json:"used_bytes"`
	CapacityBytes uint64  `json:"capacity_bytes"`
}

func main() {
	config := GetConfig()
	tt := engine.NewTranspositionTable(config.TtSize)
	game := NewGame(tt)
	hub := NewHub()

	if config.TtEnablePersistence {
		if loaded, err := restoreTT(tt, config.TtPersistencePath); err != nil {
			logger.Warn().Err(err).Msg("tt snapshot restore failed")
		} else if loaded > 0 {
			logger.Info().Int("entries", loaded).Str("path", config.TtPersistencePath).Msg("tt snapshot restored")
		}
	}

	var persistOnce sync.Once
	persistOnShutdown := func(reason string) {
		persistOnce.Do(func() {
			cfg := GetConfig()
			if !cfg.TtEnablePersistence {
				return
			}
			logger.Info().Str("reason", reason).Msg("persisting tt snapshot")
			if err := persistTT(tt, cfg.TtPersistencePath); err != nil {
				logger.Error().Err(err).Msg("tt snapshot persist failed")
			}
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error().Interface("panic", recovered).Msg("panic recovered in main")
			persistOnShutdown("panic")
		}
	}()
	defer persistOnShutdown("exit")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx.Done())

	// Engine replies run on one worker so a slow search never blocks the
	// HTTP handlers and two searches never share the engine.
	engineTurns := make(chan struct{}, 8)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-engineTurns:
				entry, result, err := game.PlayEngineMove(GetConfig().SearchLimits())
				if err != nil {
					if !errors.Is(err, errGameOver) {
						logger.Warn().Err(err).Msg("engine move failed")
					}
					continue
				}
				logger.Info().
					Int("x", entry.X).Int("y", entry.Y).
					Int("depth", result.DepthReached).
					Int("score", result.BestScore).
					Uint64("nodes", result.Nodes).
					Bool("mate", result.IsMate).
					Msg("engine move")
				hub.broadcastMove <- entry
				hub.broadcastSearch <- searchResultPayload(result)
				hub.broadcastState <- game.State()
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, game.State())
	})

	r.Post("/api/new", func(w http.ResponseWriter, r *http.Request) {
		game.Reset()
		writeJSON(w, http.StatusOK, game.State())
		hub.broadcastState <- game.State()
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		entry, err := game.ApplyHumanMove(payload.X, payload.Y)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		hub.broadcastMove <- entry
		hub.broadcastState <- game.State()
		select {
		case engineTurns <- struct{}{}:
		default:
		}
		writeJSON(w, http.StatusOK, game.State())
	})

	r.Post("/api/search", func(w http.ResponseWriter, r *http.Request) {
		limits := GetConfig().SearchLimits()
		if r.Body != nil {
			// An empty body keeps the configured limits.
			var override engine.SearchLimits
			if err := json.NewDecoder(r.Body).Decode(&override); err == nil {
				limits = override
			}
		}
		result, err := game.Analyze(limits)
		if err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		hub.broadcastSearch <- searchResultPayload(result)
		writeJSON(w, http.StatusOK, searchToResponse(result, limits))
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		config := GetConfig()
		if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		configStore.Update(config)
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Get("/api/cache/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ttCacheStatus(tt))
	})

	r.Delete("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		tt.Clear()
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, game, w, r)
	})

	server := &http.Server{
		Addr:    config.ListenAddr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Info().Str("addr", config.ListenAddr).Msg("backend listening")
	var runErr error
	select {
	case <-sigCtx.Done():
		logger.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			logger.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logger.Error().Err(closeErr).Msg("forced close failed")
		}
	}

	cancel()
	persistOnShutdown("shutdown")
	if runErr != nil {
		logger.Error().Err(runErr).Msg("exiting after server error")
	}
}

func searchResultPayload(result engine.SearchResult) searchPayload {
	return searchPayload{
		BestMove:  [2]int{result.BestMove.X, result.BestMove.Y},
		Score:     result.BestScore,
		Depth:     result.DepthReached,
		Nodes:     result.Nodes + result.QNodes,
		IsMate:    result.IsMate,
		IsTimeout: result.IsTimeout,
	}
}

func searchToResponse(result engine.SearchResult, limits engine.SearchLimits) searchResponse {
	pv := make([]apiMove, 0, len(result.PrincipalVariation))
	for _, m := range result.PrincipalVariation {
		pv = append(pv, apiMove{X: m.X, Y: m.Y})
	}
	return searchResponse{
		BestMove:  apiMove{X: result.BestMove.X, Y: result.BestMove.Y},
		Score:     result.BestScore,
		Depth:     result.DepthReached,
		IsMate:    result.IsMate,
		IsTimeout: result.IsTimeout,
		ForcedWin: result.IsForcedWin,
		PV:        pv,
		Nodes:     result.Nodes,
		QNodes:    result.QNodes,
		HashHits:  result.HashHits,
		Limits:    limits,
	}
}

func ttCacheStatus(tt *engine.TranspositionTable) cacheStatusResponse {
	count := tt.Count()
	capacity := tt.Capacity()
	entryBytes := uint64(unsafe.Sizeof(engine.TTEntry{}))
	usage := 0.0
	if capacity > 0 {
		usage = float64(count) / float64(capacity)
	}
	return cacheStatusResponse{
		Count:         count,
		Capacity:      capacity,
		Usage:         usage,
		EntryBytes:    entryBytes,
		UsedBytes:     uint64(count) * entryBytes,
		CapacityBytes: uint64(capacity) * entryBytes,
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
