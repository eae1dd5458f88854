package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"mercator-hq/piiaudit/pkg/config"
)

// CommitInfo describes the commit the policy document was read from.
type CommitInfo struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Repository string    `json:"repository"`
}

// SyncResult reports what a Sync changed.
type SyncResult struct {
	Cloned  bool
	FromSHA string
	ToSHA   string
}

// Changed reports whether HEAD moved.
func (r SyncResult) Changed() bool {
	return r.Cloned || r.FromSHA != r.ToSHA
}

// Repository keeps a local clone of the policy repository up to date.
type Repository struct {
	cfg    config.GitConfig
	auth   AuthProvider
	logger *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewRepository validates cfg and creates an unsynced repository.
func NewRepository(cfg config.GitConfig, logger *slog.Logger) (*Repository, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("local path cannot be empty")
	}

	auth, err := NewAuthProvider(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Repository{
		cfg:    cfg,
		auth:   auth,
		logger: logger.With("component", "policy.gitsource", "repository", cfg.Repository),
	}, nil
}

// PolicyPath returns the policy document path inside the local clone.
func (r *Repository) PolicyPath() string {
	return filepath.Join(r.cfg.LocalPath, r.cfg.Path)
}

// Sync clones the repository on first use (or opens an existing clone) and
// pulls on later calls.
func (r *Repository) Sync(ctx context.Context) (SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		cloned, err := r.openOrClone(ctx)
		if err != nil {
			return SyncResult{}, err
		}
		if cloned {
			sha, err := r.headSHA()
			if err != nil {
				return SyncResult{}, err
			}
			r.logger.Info("policy repository cloned", "sha", sha)
			return SyncResult{Cloned: true, ToSHA: sha}, nil
		}
	}

	return r.pull(ctx)
}

// openOrClone sets r.repo and reports whether a fresh clone was made.
func (r *Repository) openOrClone(ctx context.Context) (bool, error) {
	if _, err := os.Stat(filepath.Join(r.cfg.LocalPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.cfg.LocalPath)
		if err != nil {
			return false, fmt.Errorf("failed to open existing repo: %w", err)
		}
		r.repo = repo
		return false, nil
	}

	if err := os.MkdirAll(r.cfg.LocalPath, 0o755); err != nil {
		return false, fmt.Errorf("failed to create repository directory: %w", err)
	}

	auth, err := r.auth.Auth()
	if err != nil {
		return false, fmt.Errorf("failed to get auth: %w", err)
	}

	cloneCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, r.cfg.LocalPath, false, &gogit.CloneOptions{
		URL:           r.cfg.Repository,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  r.cfg.Depth > 0,
		Depth:         r.cfg.Depth,
	})
	if err != nil {
		return false, fmt.Errorf("failed to clone repository: %w", err)
	}
	r.repo = repo
	return true, nil
}

func (r *Repository) pull(ctx context.Context) (SyncResult, error) {
	from, err := r.headSHA()
	if err != nil {
		return SyncResult{}, err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := r.auth.Auth()
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return SyncResult{}, fmt.Errorf("failed to pull: %w", err)
	}

	to, err := r.headSHA()
	if err != nil {
		return SyncResult{}, err
	}
	if from != to {
		r.logger.Info("policy repository updated", "from", from, "to", to)
	}
	return SyncResult{FromSHA: from, ToSHA: to}, nil
}

// Head returns metadata for the checked-out commit.
func (r *Repository) Head() (*CommitInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, fmt.Errorf("repository not synced, call Sync() first")
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return &CommitInfo{
		SHA:        commit.Hash.String(),
		Author:     commit.Author.Name,
		Email:      commit.Author.Email,
		Timestamp:  commit.Author.When,
		Message:    commit.Message,
		Branch:     r.cfg.Branch,
		Repository: r.cfg.Repository,
	}, nil
}

func (r *Repository) headSHA() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.Timeout)
}
