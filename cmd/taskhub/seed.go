package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alecgard/taskhub/internal/app"
	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/config"
	"github.com/alecgard/taskhub/internal/postgres"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo users, a team, labels and tasks",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

const demoPassword = "taskhub-demo"

var demoUsers = []user.RegisterInput{
	{Name: "Ana Owner", Email: "ana@taskhub.local", Password: demoPassword},
	{Name: "Beto Member", Email: "beto@taskhub.local", Password: demoPassword},
}

var demoLabels = []string{"bug", "frontend", "backend"}

var demoTasks = []task.CreateInput{
	{Title: "Configurar CI", Description: "Pipeline de build y tests", Priority: "Alta"},
	{Title: "Pantalla de login", Description: "Formulario y validaciones", Priority: "Media"},
	{Title: "Documentar la API", Priority: "Baja"},
}

// seedSummary reports what seedDemo created.
type seedSummary struct {
	TeamID string
	Users  int
	Labels int
	Tasks  int
}

// seedDemo creates the demo data through the services, so every rule and
// history entry applies as for real requests. It is a no-op when the first
// demo user already exists.
func seedDemo(ctx context.Context, svcs *app.Services) (*seedSummary, error) {
	if _, err := svcs.Users.GetByEmail(ctx, demoUsers[0].Email); err == nil {
		slog.Info("demo data already exists, skipping seed")
		return nil, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("checking existing users: %w", err)
	}

	users := make([]*user.User, 0, len(demoUsers))
	for _, in := range demoUsers {
		u, err := svcs.Users.Register(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("registering %s: %w", in.Email, err)
		}
		users = append(users, u)
	}
	owner, member := users[0], users[1]

	tm, err := svcs.Teams.Create(ctx, "Demo", owner.ID)
	if err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}
	if _, err := svcs.Teams.AddMember(ctx, tm.ID, owner.ID, member.ID); err != nil {
		return nil, fmt.Errorf("adding member: %w", err)
	}

	labelIDs := make([]string, 0, len(demoLabels))
	for _, name := range demoLabels {
		l, err := svcs.Labels.Create(ctx, tm.ID, owner.ID, name)
		if err != nil {
			return nil, fmt.Errorf("creating label %q: %w", name, err)
		}
		labelIDs = append(labelIDs, l.ID)
	}

	for i, in := range demoTasks {
		in.TeamID = tm.ID
		in.LabelIDs = []string{labelIDs[i%len(labelIDs)]}
		v, err := svcs.Tasks.Create(ctx, in, member.ID)
		if err != nil {
			return nil, fmt.Errorf("creating task %q: %w", in.Title, err)
		}
		if i == 0 {
			if _, err := svcs.Tasks.UpdateStatus(ctx, v.ID, string(task.StatusInProgress), member.ID); err != nil {
				return nil, fmt.Errorf("starting task %q: %w", in.Title, err)
			}
		}
	}

	slog.Info("demo data seeded", "team_id", tm.ID)
	return &seedSummary{
		TeamID: tm.ID,
		Users:  len(users),
		Labels: len(labelIDs),
		Tasks:  len(demoTasks),
	}, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	svcs := app.New(app.PostgresRepos(pool), app.Options{SessionTTL: cfg.Auth.SessionTTL})
	sum, err := seedDemo(ctx, svcs)
	if err != nil || sum == nil {
		return err
	}

	fmt.Printf("\n=== Demo Data Seeded ===\n")
	fmt.Printf("Team:      Demo (%s)\n", sum.TeamID)
	fmt.Printf("Users:     %s / %s (password %q)\n", demoUsers[0].Email, demoUsers[1].Email, demoPassword)
	fmt.Printf("Labels:    %d\n", sum.Labels)
	fmt.Printf("Tasks:     %d\n", sum.Tasks)
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curl -X POST -d '{\"email\":\"%s\",\"password\":\"%s\"}' http://localhost:8080/api/v1/auth/login\n", demoUsers[0].Email, demoPassword)

	return nil
}
