// Package app assembles the taskhub services over a chosen store.
package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/taskhub/internal/comment"
	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
	"github.com/alecgard/taskhub/internal/memstore"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/team"
	"github.com/alecgard/taskhub/internal/user"
)

// Repos is one repository per aggregate, all backed by the same store.
type Repos struct {
	Users    user.Repository
	Teams    team.Repository
	Tasks    task.Repository
	Labels   label.Repository
	Comments comment.Repository
	History  history.Reader
}

// PostgresRepos returns the pgx-backed repositories.
func PostgresRepos(pool *pgxpool.Pool) Repos {
	return Repos{
		Users:    user.NewStore(pool),
		Teams:    team.NewStore(pool),
		Tasks:    task.NewStore(pool),
		Labels:   label.NewStore(pool),
		Comments: comment.NewStore(pool),
		History:  history.NewStore(pool),
	}
}

// MemoryRepos returns repositories over an in-memory database.
func MemoryRepos(db *memstore.DB) Repos {
	return Repos{
		Users:    db.Users(),
		Teams:    db.Teams(),
		Tasks:    db.Tasks(),
		Labels:   db.Labels(),
		Comments: db.Comments(),
		History:  db.History(),
	}
}

// Options tunes the services.
type Options struct {
	SessionTTL time.Duration
	Pagination task.Pagination
	Recorder   task.Recorder // optional
	HashCost   int           // 0 keeps the bcrypt default
}

// Services is the fully wired domain layer.
type Services struct {
	Users    *user.Service
	Teams    *team.Service
	Tasks    *task.Service
	Labels   *label.Service
	Comments *comment.Service
	Sessions *user.AuthAdapter
}

// New wires every service over repos.
func New(repos Repos, opts Options) *Services {
	users := user.NewService(repos.Users, opts.SessionTTL)
	if opts.HashCost > 0 {
		users.SetHashCost(opts.HashCost)
	}
	teams := team.NewService(repos.Teams, repos.Users)

	return &Services{
		Users: users,
		Teams: teams,
		Tasks: task.NewService(task.Deps{
			Repo:       repos.Tasks,
			Members:    teams,
			Users:      repos.Users,
			Labels:     repos.Labels,
			History:    repos.History,
			Pagination: opts.Pagination,
			Recorder:   opts.Recorder,
		}),
		Labels:   label.NewService(repos.Labels, teams, repos.Tasks),
		Comments: comment.NewService(repos.Comments, repos.Tasks, repos.Users, teams),
		Sessions: user.NewAuthAdapter(users),
	}
}
