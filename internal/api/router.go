package api

import (
	"context"
	"net/http"

	"github.com/alecgard/taskhub/internal/auth"
	"github.com/alecgard/taskhub/internal/comment"
	"github.com/alecgard/taskhub/internal/label"
	"github.com/alecgard/taskhub/internal/ratelimit"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/team"
	"github.com/alecgard/taskhub/internal/user"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Pinger reports store reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Observer is the metrics surface the router reports to.
type Observer interface {
	HTTPObserver
	ErrorCounter
	auth.FailureRecorder
	IncRateLimitRejection(scope string)
}

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Users    *user.Service
	Teams    *team.Service
	Tasks    *task.Service
	Labels   *label.Service
	Comments *comment.Service
	Sessions auth.SessionLookup
	Limiter  *ratelimit.Limiter // nil disables rate limiting
	Metrics  Observer           // optional
	Pinger   Pinger             // optional

	// MetricsHandler serves Prometheus exposition at /metrics and
	// SummaryHandler the JSON summary at /metrics/summary. Both optional.
	MetricsHandler http.Handler
	SummaryHandler http.Handler

	AllowedOrigins []string
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(instrument(deps.Metrics))
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))

	var rs responder
	var authRec auth.FailureRecorder
	var onReject func(string)
	if deps.Metrics != nil {
		rs.errs = deps.Metrics
		authRec = deps.Metrics
		onReject = deps.Metrics.IncRateLimitRejection
	}
	limit := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		limit = ratelimit.Middleware(deps.Limiter, onReject)
	}

	r.Get("/health", healthHandler(deps.Pinger))
	r.Get("/.well-known/taskhub.json", WellKnownHandler)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	if deps.SummaryHandler != nil {
		r.Handle("/metrics/summary", deps.SummaryHandler)
	}

	// Services are optional so ops routes can be tested alone.
	if deps.Users == nil {
		return r
	}

	authH := newAuthHandler(deps.Users, rs)
	teams := newTeamsHandler(deps.Teams, deps.Tasks, rs)
	tasks := newTasksHandler(deps.Tasks, rs)
	labels := newLabelsHandler(deps.Labels, rs)
	comments := newCommentsHandler(deps.Comments, rs)

	r.Route("/api/v1", func(ar chi.Router) {
		// Public routes, limited per client address.
		ar.Group(func(pr chi.Router) {
			pr.Use(limit)
			pr.Post("/auth/register", authH.Register)
			pr.Post("/auth/login", authH.Login)
		})

		// Session-authed routes, limited per user.
		ar.Group(func(sr chi.Router) {
			sr.Use(auth.SessionMiddleware(deps.Sessions, authRec))
			sr.Use(limit)

			sr.Post("/auth/logout", authH.Logout)
			sr.Get("/auth/me", authH.Me)
			sr.Put("/users/me", authH.UpdateProfile)

			sr.Post("/teams", teams.CreateTeam)
			sr.Get("/teams", teams.ListTeams)
			sr.Route("/teams/{teamID}", func(tr chi.Router) {
				tr.Get("/", teams.GetTeam)
				tr.Delete("/", teams.DeleteTeam)
				tr.Post("/invite", teams.Invite)
				tr.Post("/leave", teams.Leave)
				tr.Get("/tasks", teams.ListTasks)
				tr.Get("/labels", labels.ListLabels)
				tr.Post("/labels", labels.CreateLabel)
			})

			sr.Patch("/labels/{labelID}", labels.UpdateLabel)
			sr.Delete("/labels/{labelID}", labels.DeleteLabel)

			sr.Post("/tasks", tasks.CreateTask)
			sr.Route("/tasks/{taskID}", func(tr chi.Router) {
				tr.Get("/", tasks.GetTask)
				tr.Delete("/", tasks.DeleteTask)
				tr.Put("/status", tasks.UpdateStatus)
				tr.Get("/history", tasks.History)
				tr.Get("/labels", labels.ListTaskLabels)
				tr.Post("/labels/{labelID}", labels.Assign)
				tr.Delete("/labels/{labelID}", labels.Unassign)
				tr.Get("/comments", comments.ListComments)
				tr.Post("/comments", comments.CreateComment)
			})

			sr.Put("/comments/{commentID}", comments.EditComment)
			sr.Delete("/comments/{commentID}", comments.DeleteComment)
		})
	})

	return r
}

// healthHandler reports ok when the store answers a ping.
func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "degraded",
					"database": "unreachable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": "connected",
		})
	}
}
