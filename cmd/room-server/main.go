package main

import (
	"context"
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"snipe-holdem/internal/config"
	"snipe-holdem/internal/logging"
	"snipe-holdem/internal/store"
	"snipe-holdem/internal/ws"
)

var roomsOpen = expvar.NewInt("rooms_open")

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	var st *store.Store
	if cfg.Server.PostgresDSN != "" {
		st, err = store.New(cfg.Server.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("store init failed")
		}
		if err := st.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		if err := st.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("ensure schema failed")
		}
	} else {
		log.Warn().Msg("no POSTGRES_DSN: running without journal or snapshots")
	}

	hub := ws.NewHub(context.Background(), st, cfg.Server.SnapshotInterval, cfg.Server.SnapshotRetry)
	r := newRouter(st, hub)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func newRouter(st *store.Store, hub *ws.Hub) *chi.Mux {
	wsServer := ws.NewServer(hub)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))
	r.With(apiLogMiddleware()).Get("/rooms/{roomID}/snapshot", snapshotHandler(st))
	r.With(apiLogMiddleware()).Get("/rooms/{roomID}/events", eventsHandler(st))
	r.Get("/rooms/{roomID}/ws", func(w http.ResponseWriter, req *http.Request) {
		wsServer.HandleWS(w, req)
		roomsOpen.Set(int64(hub.Open()))
	})
	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	return r
}

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}
