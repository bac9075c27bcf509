// Package publish commits the rendered feed artifacts to git.
//
// The flow mirrors what a human operator would do: stage the outputs, skip
// the commit when the staged tree matches HEAD, otherwise commit and
// optionally push.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// runGit executes one git command in dir. Swapped in tests.
var runGit = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Config holds publisher configuration.
type Config struct {
	RepoDir string   // Repository root (default: ".")
	Message string   // Commit message
	Push    bool     // Push after committing
	Paths   []string // Artifacts to stage
}

// Publisher commits the feed outputs after each pass.
type Publisher struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Publisher.
func New(cfg Config, logger *slog.Logger) *Publisher {
	if cfg.RepoDir == "" {
		cfg.RepoDir = "."
	}
	if cfg.Message == "" {
		cfg.Message = "chore: update stock feed"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		cfg:    cfg,
		logger: logger,
	}
}

// HandleSnapshot publishes the artifacts the snapshot was rendered to.
func (p *Publisher) HandleSnapshot(ctx context.Context, snap model.RankedSnapshot) error {
	return p.Publish(ctx)
}

// Publish stages the artifacts and commits when they changed.
func (p *Publisher) Publish(ctx context.Context) error {
	args := append([]string{"add", "--"}, p.cfg.Paths...)
	if out, err := runGit(ctx, p.cfg.RepoDir, args...); err != nil {
		return fmt.Errorf("git add: %w: %s", err, out)
	}

	// Exit status 0 means the staged tree matches HEAD: nothing to commit.
	if _, err := runGit(ctx, p.cfg.RepoDir, "diff", "--cached", "--quiet"); err == nil {
		p.logger.Debug("feed unchanged, skipping commit")
		return nil
	}

	if out, err := runGit(ctx, p.cfg.RepoDir, "commit", "-m", p.cfg.Message); err != nil {
		return fmt.Errorf("git commit: %w: %s", err, out)
	}

	if p.cfg.Push {
		if out, err := runGit(ctx, p.cfg.RepoDir, "push"); err != nil {
			return fmt.Errorf("git push: %w: %s", err, out)
		}
	}

	p.logger.Info("feed published", "pushed", p.cfg.Push)
	return nil
}
