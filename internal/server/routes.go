package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/kanban/internal/api/v1"
	"github.com/gosuda/kanban/internal/api/ws"
	"github.com/gosuda/kanban/internal/config"
	"github.com/gosuda/kanban/internal/server/middleware"
)

func registerAPIRoutes(api huma.API, svc v1.TaskService) {
	v1.RegisterTaskRoutes(api, svc)
	v1.RegisterBoardRoutes(api, svc)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board", hub.ServeBoard)
}

func rateLimit(ctx context.Context, cfg *config.Config) func(http.Handler) http.Handler {
	return middleware.RateLimitByIP(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
}

// corsHosts turns CORS origins into websocket origin patterns, which match
// on host only.
func corsHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
