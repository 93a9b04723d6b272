// Package git implements the repository synchronizer. Exactly one of
// clone or pull happens per run, decided by whether the local checkout
// already exists. Authentication uses a token-bearing AuthMethod handed to
// the transport; the token is never embedded in the stored remote URL.
package git

import (
	"context"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"ferry/internal/errors"
	"ferry/internal/logger"
)

// Action reports which synchronization path a run took.
type Action string

const (
	// ActionCloned means no checkout existed and a fresh clone was made
	ActionCloned Action = "cloned"
	// ActionPulled means an existing checkout was updated
	ActionPulled Action = "pulled"
)

// Synchronizer clones or updates the local checkout of the deployed
// repository.
type Synchronizer struct {
	auth transport.AuthMethod
}

// New creates a synchronizer. A non-empty token becomes HTTP basic-auth
// credentials on the transport, the convention token-authenticated forges
// accept for both usernames and OAuth tokens.
func New(token string) *Synchronizer {
	var auth transport.AuthMethod
	if token != "" {
		auth = &http.BasicAuth{
			Username: "oauth2",
			Password: token,
		}
	}
	return &Synchronizer{auth: auth}
}

// Sync brings the checkout at path up to date with the given branch of
// repoURL. It returns which of the two mutually exclusive paths ran.
func (s *Synchronizer) Sync(ctx context.Context, repoURL, branch, path string) (Action, error) {
	if s.IsRepository(path) {
		if err := s.pull(ctx, repoURL, branch, path); err != nil {
			return ActionPulled, err
		}
		return ActionPulled, nil
	}

	if err := s.clone(ctx, repoURL, branch, path); err != nil {
		return ActionCloned, err
	}
	return ActionCloned, nil
}

// IsRepository checks if the path is a valid git repository
func (s *Synchronizer) IsRepository(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

func (s *Synchronizer) clone(ctx context.Context, repoURL, branch, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.GitCloneFailed(repoURL, err)
	}

	logger.WithFields(logger.Fields{"url": repoURL, "branch": branch}).Info("Cloning repository")

	_, err := gogit.PlainCloneContext(ctx, path, false, &gogit.CloneOptions{
		URL:           repoURL,
		Auth:          s.auth,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
	})
	if err != nil {
		// Clean up partial clone on failure
		os.RemoveAll(path)
		return errors.GitCloneFailed(repoURL, err)
	}
	return nil
}

func (s *Synchronizer) pull(ctx context.Context, repoURL, branch, path string) error {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return errors.GitPullFailed(branch, err)
	}

	if err := s.setRemoteURL(repo, repoURL); err != nil {
		return errors.GitPullFailed(branch, err)
	}

	if err := repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: "origin",
		Auth:       s.auth,
	}); err != nil && err != gogit.NoErrAlreadyUpToDate {
		return errors.GitPullFailed(branch, err)
	}

	if err := s.checkout(repo, branch); err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errors.GitPullFailed(branch, err)
	}

	logger.WithFields(logger.Fields{"branch": branch}).Info("Pulling latest changes")

	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		Auth:          s.auth,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return errors.GitPullFailed(branch, err)
	}
	return nil
}

// setRemoteURL points origin at the clean repository URL so a rotated token
// or a moved repository does not strand the checkout.
func (s *Synchronizer) setRemoteURL(repo *gogit.Repository, repoURL string) error {
	cfg, err := repo.Config()
	if err != nil {
		return err
	}
	remote, ok := cfg.Remotes["origin"]
	if !ok {
		remote = &gitconfig.RemoteConfig{Name: "origin"}
		cfg.Remotes["origin"] = remote
	}
	remote.URLs = []string{repoURL}
	return repo.Storer.SetConfig(cfg)
}

func (s *Synchronizer) checkout(repo *gogit.Repository, branch string) error {
	branchRef := plumbing.NewBranchReferenceName(branch)

	if _, err := repo.Reference(branchRef, true); err != nil {
		// No local branch yet; create one tracking the remote branch
		remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
		if err != nil {
			return errors.GitCheckoutFailed(branch, err)
		}
		ref := plumbing.NewHashReference(branchRef, remoteRef.Hash())
		if err := repo.Storer.SetReference(ref); err != nil {
			return errors.GitCheckoutFailed(branch, err)
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errors.GitCheckoutFailed(branch, err)
	}

	if err := worktree.Checkout(&gogit.CheckoutOptions{Branch: branchRef}); err != nil {
		return errors.GitCheckoutFailed(branch, err)
	}
	return nil
}

// CurrentBranch returns the branch the checkout is on.
func (s *Synchronizer) CurrentBranch(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	if !head.Name().IsBranch() {
		return "", errors.New(errors.ErrInternal, "checkout is in detached HEAD state")
	}
	return head.Name().Short(), nil
}
