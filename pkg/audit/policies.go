package audit

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/piiaudit/pkg/config"
	"mercator-hq/piiaudit/pkg/policy"
	"mercator-hq/piiaudit/pkg/policy/gitsource"
)

// PolicySet is the rule set used for one evaluation.
type PolicySet struct {
	Evaluator *policy.Evaluator

	// Commit is set when the rules were read from a Git repository.
	Commit *gitsource.CommitInfo
}

// CommitSHA returns the policy commit, or "" for file policies.
func (p PolicySet) CommitSHA() string {
	if p.Commit == nil {
		return ""
	}
	return p.Commit.SHA
}

// PolicySource supplies the active rule set at the start of each run.
type PolicySource interface {
	Policies(ctx context.Context) (PolicySet, error)
	Describe() string
}

// ReloadRecorder receives the outcome of every policy load.
type ReloadRecorder interface {
	RecordPolicyReload(rules int, err error)
}

// FilePolicies serves the rules held by a policy.Store. The store is
// reloaded externally, typically by a file watcher.
type FilePolicies struct {
	Store *policy.Store
}

// Policies returns the store's active evaluator.
func (f *FilePolicies) Policies(context.Context) (PolicySet, error) {
	return PolicySet{Evaluator: f.Store.Evaluator()}, nil
}

// Describe returns the policy file path.
func (f *FilePolicies) Describe() string {
	return f.Store.Path()
}

// GitPolicies pulls a policy repository before every run and reads the
// policy document at its HEAD.
type GitPolicies struct {
	repo     *gitsource.Repository
	opts     []policy.Option
	recorder ReloadRecorder
	logger   *slog.Logger
}

// NewGitPolicies creates a Git-backed policy source. recorder may be nil.
func NewGitPolicies(repo *gitsource.Repository, recorder ReloadRecorder, logger *slog.Logger, opts ...policy.Option) *GitPolicies {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitPolicies{
		repo:     repo,
		opts:     opts,
		recorder: recorder,
		logger:   logger.With("component", "audit.policies"),
	}
}

// Policies syncs the repository and builds an evaluator from the policy
// document at HEAD.
func (g *GitPolicies) Policies(ctx context.Context) (PolicySet, error) {
	set, rules, err := g.load(ctx)
	if g.recorder != nil {
		g.recorder.RecordPolicyReload(rules, err)
	}
	return set, err
}

func (g *GitPolicies) load(ctx context.Context) (PolicySet, int, error) {
	sync, err := g.repo.Sync(ctx)
	if err != nil {
		return PolicySet{}, 0, fmt.Errorf("sync policy repository: %w", err)
	}
	if sync.Changed() {
		g.logger.Info("policy repository updated",
			"from", sync.FromSHA,
			"to", sync.ToSHA,
		)
	}

	rules, err := policy.LoadFile(g.repo.PolicyPath())
	if err != nil {
		return PolicySet{}, 0, err
	}
	evaluator, err := policy.NewEvaluator(rules, g.opts...)
	if err != nil {
		return PolicySet{}, 0, fmt.Errorf("policy file %q: %w", g.repo.PolicyPath(), err)
	}
	head, err := g.repo.Head()
	if err != nil {
		return PolicySet{}, 0, err
	}
	return PolicySet{Evaluator: evaluator, Commit: head}, len(rules), nil
}

// Describe returns the repository policy path.
func (g *GitPolicies) Describe() string {
	return g.repo.PolicyPath()
}

// OpenPolicies builds the policy source selected by cfg. File policies are
// loaded immediately so that configuration errors surface at startup.
func OpenPolicies(cfg config.PolicyConfig, recorder ReloadRecorder, logger *slog.Logger, opts ...policy.Option) (PolicySource, error) {
	if cfg.Git.Enabled {
		repo, err := gitsource.NewRepository(cfg.Git, logger)
		if err != nil {
			return nil, err
		}
		return NewGitPolicies(repo, recorder, logger, opts...), nil
	}

	store, err := policy.NewStore(cfg.FilePath, logger, opts...)
	if recorder != nil {
		rules := 0
		if store != nil {
			rules = len(store.Evaluator().Rules())
		}
		recorder.RecordPolicyReload(rules, err)
	}
	if err != nil {
		return nil, err
	}
	return &FilePolicies{Store: store}, nil
}
