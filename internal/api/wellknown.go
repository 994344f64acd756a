package api

import "net/http"

// wellKnownManifest is the static JSON manifest for /.well-known/taskhub.json.
const wellKnownManifest = `{
  "name": "taskhub",
  "description": "Team task tracker with workflow, labels and audit trail",
  "version": "0.1.0",
  "api_base": "/api/v1",
  "auth": {
    "type": "bearer",
    "header": "Authorization",
    "login": "/api/v1/auth/login"
  },
  "endpoints": {
    "teams": "/api/v1/teams",
    "team_tasks": "/api/v1/teams/{teamID}/tasks",
    "team_labels": "/api/v1/teams/{teamID}/labels",
    "tasks": "/api/v1/tasks",
    "comments": "/api/v1/tasks/{taskID}/comments"
  },
  "workflow": {
    "Pendiente": ["En curso", "Cancelada"],
    "En curso": ["Terminada", "Cancelada"],
    "Terminada": ["Cancelada"],
    "Cancelada": []
  },
  "health": "/health"
}`

// WellKnownHandler returns the static taskhub well-known manifest.
func WellKnownHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(wellKnownManifest))
}
