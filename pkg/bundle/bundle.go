// Package bundle fetches an external bundle of compiled modules named by
// a suite manifest's BundleSpec, cloning (or updating) a git repository
// into a local cache directory.
package bundle

import (
	"errors"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/tjweir/quickstrom/pkg/config"
)

// Fetch clones spec.Git into destDir if it doesn't already exist there, or
// opens and updates it (fetch + checkout) if it does, then checks out the
// ref named by Tag/Branch/Rev (in that priority order; the manifest layer
// already rejects specifying more than one).
func Fetch(spec *config.BundleSpec, destDir string) error {
	if spec == nil {
		return errors.New("bundle: nil spec")
	}
	if spec.Git == "" {
		return errors.New("bundle: spec.Git must not be empty")
	}

	repo, err := git.PlainOpen(destDir)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		repo, err = git.PlainClone(destDir, false, &git.CloneOptions{URL: spec.Git})
		if err != nil {
			return fmt.Errorf("bundle: clone %s: %w", spec.Git, err)
		}
	case err != nil:
		return fmt.Errorf("bundle: open %s: %w", destDir, err)
	default:
		wt, wtErr := repo.Worktree()
		if wtErr != nil {
			return fmt.Errorf("bundle: worktree for %s: %w", destDir, wtErr)
		}
		if fetchErr := wt.Pull(&git.PullOptions{RemoteName: "origin"}); fetchErr != nil && !errors.Is(fetchErr, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("bundle: pull %s: %w", destDir, fetchErr)
		}
	}

	ref := refName(spec)
	if ref == "" {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("bundle: worktree for %s: %w", destDir, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.ReferenceName(ref)}); err != nil {
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(ref)}); err != nil {
			return fmt.Errorf("bundle: checkout %q in %s: %w", ref, destDir, err)
		}
	}
	return nil
}

func refName(spec *config.BundleSpec) string {
	switch {
	case spec.Tag != "":
		return "refs/tags/" + spec.Tag
	case spec.Branch != "":
		return "refs/heads/" + spec.Branch
	case spec.Rev != "":
		return spec.Rev
	default:
		return ""
	}
}

// ModulePaths lists the compiled-module JSON files found directly under
// dir, for wiring a fetched bundle's modules into a program.Program.
func ModulePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > len(".json") && name[len(name)-len(".json"):] == ".json" {
			out = append(out, dir+"/"+name)
		}
	}
	return out, nil
}
