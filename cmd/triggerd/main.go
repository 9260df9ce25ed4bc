// Command triggerd is a minimal illustration of wiring external producers
// onto the trigger engine: an HTTP webhook receiver and a periodic cron
// emitter. Neither is part of the engine's core; both are ordinary callers
// of Engine.Emit, demonstrating the boundary between the engine and its
// transport-layer producers.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	trigger "github.com/Miles0sage/trigger-engine"
	"github.com/Miles0sage/trigger-engine/config"
)

func main() {
	logger, err := trigger.NewZapLogger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}

	engine := trigger.NewEngine(config.DefaultEngineConfig(), logger)
	registerSampleTriggers(engine, logger)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Post("/events/{eventType}", emitHandler(engine))

	httpServer := &http.Server{Addr: ":8080", Handler: router}

	c := cron.New()
	_, err = c.AddFunc("@every 1m", func() {
		buildID := time.Now().Format("20060102150405")
		_ = engine.Emit(context.Background(), trigger.EventBuildStarted, trigger.BuildStartedPayload{
			BuildID:   buildID,
			StartedAt: time.Now(),
		})
	})
	if err != nil {
		log.Fatalf("schedule cron producer: %v", err)
	}
	c.Start()
	defer c.Stop()

	go func() {
		logger.Info("http gateway listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = engine.Close()
}

// emitHandler decodes a JSON body and forwards it to the engine as the
// payload for {eventType}. This is the transport/HTTP boundary called out
// as out-of-core-scope: it knows nothing about triggers, only about Emit.
func emitHandler(engine *trigger.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventType := chi.URLParam(r, "eventType")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}

		var payload map[string]any
		if len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				http.Error(w, "decode body: "+err.Error(), http.StatusBadRequest)
				return
			}
		}

		if err := engine.Emit(r.Context(), eventType, payload); err != nil {
			http.Error(w, "emit: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// registerSampleTriggers wires up one of the canonical event types from
// events.go to illustrate a realistic registration, matching one of the
// motivating use cases: auto-deploy on a passed quality gate.
func registerSampleTriggers(engine *trigger.Engine, logger trigger.Logger) {
	_, err := engine.Register(trigger.Trigger{
		EventType:   trigger.EventQualityGatePassed,
		Description: "kick off deployment once a commit clears its quality gate",
		Priority:    trigger.PriorityHigh,
		Condition: func(data any) bool {
			payload, ok := data.(map[string]any)
			if !ok {
				return false
			}
			allChecks, _ := payload["all_checks"].(bool)
			return allChecks
		},
		Actions: []trigger.Action{
			func(ctx context.Context, data any) error {
				logger.Info("quality gate passed, deployment would start here", "payload", data)
				return nil
			},
		},
	})
	if err != nil {
		logger.Error("failed to register sample trigger", "error", err)
	}
}
