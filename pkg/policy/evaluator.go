package policy

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"mercator-hq/piiaudit/pkg/pii"
)

// Recorder receives per-rule evaluation outcomes. It is implemented by the
// metrics collector.
type Recorder interface {
	RecordRuleEvaluation(ruleID string, violations int, duration time.Duration)
}

// Evaluator applies a validated rule set to registries.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	rules    []compiledRule
	workers  int
	recorder Recorder
	logger   *slog.Logger
}

// compiledRule is a Rule with its lookup sets precomputed.
type compiledRule struct {
	Rule
	forbidden map[pii.Tag]struct{}
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRecorder reports each rule evaluation to r.
func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) {
		e.recorder = r
	}
}

// WithLogger sets the evaluator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConcurrency bounds the number of rules evaluated concurrently.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.workers = n
	}
}

// NewEvaluator validates rules and builds an evaluator. An invalid rule set
// is rejected as a whole.
func NewEvaluator(rules []Rule, opts ...Option) (*Evaluator, error) {
	if err := Validate(rules); err != nil {
		return nil, err
	}

	e := &Evaluator{
		rules:  make([]compiledRule, len(rules)),
		logger: slog.Default().With("component", "policy.evaluator"),
	}
	for i, rule := range rules {
		cr := compiledRule{
			Rule:      rule,
			forbidden: make(map[pii.Tag]struct{}, len(rule.ForbiddenTags)),
		}
		for _, tag := range rule.ForbiddenTags {
			cr.forbidden[tag] = struct{}{}
		}
		e.rules[i] = cr
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e, nil
}

// Rules returns the rules in declaration order.
func (e *Evaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, cr := range e.rules {
		out[i] = cr.Rule
	}
	return out
}

// Evaluate applies every rule to every registry row and returns violations
// ordered by rule declaration order, then registry order.
func (e *Evaluator) Evaluate(ctx context.Context, registry pii.Registry) ([]Violation, error) {
	perRule := make([][]Violation, len(e.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range e.rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("evaluate policy %q: %w", e.rules[i].ID, err)
			}
			start := time.Now()
			perRule[i] = e.rules[i].evaluate(registry)
			if e.recorder != nil {
				e.recorder.RecordRuleEvaluation(e.rules[i].ID, len(perRule[i]), time.Since(start))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var violations []Violation
	for i, vs := range perRule {
		if len(vs) > 0 {
			e.logger.Debug("policy violated",
				"policy_id", e.rules[i].ID,
				"violations", len(vs),
			)
		}
		violations = append(violations, vs...)
	}
	return violations, nil
}

// evaluate runs one rule against the registry in row order.
func (r compiledRule) evaluate(registry pii.Registry) []Violation {
	var out []Violation

	for _, row := range registry.Rows {
		if !r.Scope.Includes(row.Table) {
			continue
		}

		if len(r.forbidden) > 0 {
			var hit []pii.Tag
			for _, tag := range row.Tags {
				if _, ok := r.forbidden[tag]; ok {
					hit = append(hit, tag)
				}
			}
			if len(hit) > 0 {
				out = append(out, Violation{
					PolicyID: r.ID,
					Table:    row.Table,
					Column:   row.Column,
					Tags:     pii.SortTags(row.Tags),
					Reason:   ForbiddenReasonPrefix + pii.JoinTags(hit),
				})
			}
		}

		if r.RequireTagForDetected && len(row.Tags) == 0 {
			out = append(out, Violation{
				PolicyID: r.ID,
				Table:    row.Table,
				Column:   row.Column,
				Tags:     []pii.Tag{},
				Reason:   MissingTagReason,
			})
		}
	}

	return out
}
