package api

import (
	"net/http"
	"triptracks-service/internal/api/handlers"
	"triptracks-service/internal/ports"
	"triptracks-service/internal/services"
	"triptracks-service/internal/session"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the HTTP layer is wired against.
type Deps struct {
	Planner     *services.Planner
	Places      handlers.PlaceSearcher
	Broadcaster *session.Broadcaster
	Chats       ports.ChatRepository
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.PlanHandler{Planner: d.Planner}
	placeHandler := &handlers.PlaceHandler{Searcher: d.Places}
	chatHandler := &handlers.ChatHandler{Chats: d.Chats}
	liveHandler := &handlers.LiveHandler{
		Broadcaster: d.Broadcaster,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/api/trips/autocomplete", placeHandler.Autocomplete)
	mux.HandleFunc("/api/trips/intelligence/plan", planHandler.Plan)
	mux.HandleFunc("/api/trips/intelligence/cost", planHandler.Cost)
	mux.HandleFunc("/api/trips/{trip_id}/chat", chatHandler.History)
	mux.HandleFunc("/ws/trips/{trip_id}", liveHandler.Connect)

	return requestIDMiddleware(loggingMiddleware(mux))
}
