package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"

	admin "github.com/SantoNinoNZ/admin-sub000"
	"github.com/SantoNinoNZ/admin-sub000/internal/deploy"
	"github.com/SantoNinoNZ/admin-sub000/internal/di"
	"github.com/uptrace/bun"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("admin: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dsn := fs.String("dsn", "file::memory:?cache=shared", "SQLite DSN for the admin database")
	owner := fs.String("owner", "", "GitHub owner of the site repository")
	repo := fs.String("repo", "", "GitHub repository holding the site content")
	branch := fs.String("branch", "main", "Branch the content and workflow live on")
	dir := fs.String("dir", "posts", "Directory inside the repository holding markdown posts")
	token := fs.String("token", os.Getenv("GITHUB_TOKEN"), "GitHub token with contents and workflow scope")
	workflow := fs.String("workflow", "build.yml", "Workflow file that builds the site")
	level := fs.String("log-level", "info", "Log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := admin.DefaultConfig()
	cfg.Storage = admin.StorageConfig{Driver: "sqlite", DSN: *dsn}
	cfg.Content.Owner = *owner
	cfg.Content.Repo = *repo
	cfg.Content.Branch = *branch
	cfg.Content.Dir = *dir
	cfg.Content.Token = *token
	cfg.Deploy.WorkflowFile = *workflow
	cfg.Deploy.Branch = *branch
	cfg.Logging.Level = *level
	cfg.Features.StaticPosts = *owner != "" && *repo != ""
	cfg.Features.Deploy = cfg.Features.StaticPosts

	db, err := di.OpenDatabase(cfg.Storage)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	opts := []di.Option{}
	if db != nil {
		opts = append(opts, di.WithBunDB(db))
		if err := applyMigrations(db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	module, err := admin.New(cfg, opts...)
	if err != nil {
		return err
	}

	ctx := context.Background()
	merged, err := module.Content().List(ctx)
	if err != nil {
		return fmt.Errorf("list content: %w", err)
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	for _, post := range merged {
		entry := map[string]any{
			"source": string(post.Source),
			"slug":   post.Slug(),
			"title":  post.Title(),
		}
		if err := out.Encode(entry); err != nil {
			return err
		}
	}

	if svc := module.Deploy(); svc != nil {
		snapshot, err := svc.Status(ctx)
		switch {
		case errors.Is(err, deploy.ErrNoRuns):
			fmt.Fprintln(os.Stderr, "no build runs yet")
		case err != nil:
			return fmt.Errorf("build status: %w", err)
		default:
			if err := out.Encode(snapshot); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyMigrations(db *bun.DB) error {
	root := admin.GetMigrationsFS()
	entries, err := fs.ReadDir(root, "data/sql/migrations")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		script, err := fs.ReadFile(root, "data/sql/migrations/"+name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return nil
}
