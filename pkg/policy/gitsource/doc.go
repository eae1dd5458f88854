// Package gitsource keeps a local clone of a Git repository that holds the
// policy document.
//
// The audit pipeline calls Sync before each run and reads the policy file
// from PolicyPath; the HEAD commit is recorded with the run result.
//
//	repo, err := gitsource.NewRepository(cfg.Policy.Git, logger)
//	if err != nil {
//		return err
//	}
//	if _, err := repo.Sync(ctx); err != nil {
//		return err
//	}
//	rules, err := policy.LoadFile(repo.PolicyPath())
package gitsource
