// Package memstore is an in-memory implementation of every taskhub
// repository. A single DB guards all relations with one lock, so multi-row
// writes are atomic and deletes cascade the way the Postgres schema does.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alecgard/taskhub/internal/comment"
	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/team"
	"github.com/alecgard/taskhub/internal/user"
)

var (
	_ user.Repository    = (*Users)(nil)
	_ team.Repository    = (*Teams)(nil)
	_ task.Repository    = (*Tasks)(nil)
	_ label.Repository   = (*Labels)(nil)
	_ label.TaskTeams    = (*Tasks)(nil)
	_ comment.Repository = (*Comments)(nil)
	_ comment.TaskTeams  = (*Tasks)(nil)
	_ history.Reader     = (*History)(nil)
)

type teamRow struct {
	id        string
	name      string
	ownerID   string
	createdAt time.Time
}

type membership struct {
	userID   string
	joinedAt time.Time
}

// DB holds all relations.
type DB struct {
	mu   sync.RWMutex
	last time.Time

	users    map[string]*user.User
	sessions map[string]user.Session
	teams    map[string]*teamRow
	members  map[string][]membership
	tasks    map[string]*task.Task
	labels   map[string]*label.Label
	links    map[string][]string
	comments map[string]*comment.Comment
	history  []history.Entry
}

// New returns an empty database.
func New() *DB {
	return &DB{
		users:    make(map[string]*user.User),
		sessions: make(map[string]user.Session),
		teams:    make(map[string]*teamRow),
		members:  make(map[string][]membership),
		tasks:    make(map[string]*task.Task),
		labels:   make(map[string]*label.Label),
		links:    make(map[string][]string),
		comments: make(map[string]*comment.Comment),
	}
}

// Ping always succeeds.
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

// now returns a strictly increasing timestamp so creation order is total.
// Callers must hold the write lock.
func (db *DB) now() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(db.last) {
		t = db.last.Add(time.Microsecond)
	}
	db.last = t
	return t
}

func newID() string {
	return uuid.NewString()
}

// Users returns the user repository view.
func (db *DB) Users() *Users { return &Users{db: db} }

// Teams returns the team repository view.
func (db *DB) Teams() *Teams { return &Teams{db: db} }

// Tasks returns the task repository view.
func (db *DB) Tasks() *Tasks { return &Tasks{db: db} }

// Labels returns the label repository view.
func (db *DB) Labels() *Labels { return &Labels{db: db} }

// Comments returns the comment repository view.
func (db *DB) Comments() *Comments { return &Comments{db: db} }

// History returns the read side of the audit trail.
func (db *DB) History() *History { return &History{db: db} }

// deleteTaskLocked removes a task and everything hanging off it.
func (db *DB) deleteTaskLocked(id string) {
	delete(db.tasks, id)
	delete(db.links, id)
	for cid, c := range db.comments {
		if c.TaskID == id {
			delete(db.comments, cid)
		}
	}
	kept := db.history[:0]
	for _, e := range db.history {
		if e.TaskID != id {
			kept = append(kept, e)
		}
	}
	db.history = kept
}

// deleteLabelLocked removes a label and its task links.
func (db *DB) deleteLabelLocked(id string) {
	delete(db.labels, id)
	for taskID, links := range db.links {
		kept := links[:0]
		for _, l := range links {
			if l != id {
				kept = append(kept, l)
			}
		}
		db.links[taskID] = kept
	}
}
