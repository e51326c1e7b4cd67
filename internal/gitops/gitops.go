// Package gitops manages the addon repositories deployed next to the
// environments: cloning, pulling and inspecting git state.
package gitops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
	"github.com/edvin/opsdash/internal/platform"
)

// Service tracks cloned repositories in a JSON registry file and works
// on their checkouts with go-git.
type Service struct {
	registryPath string
	reposDir     string
	logger       zerolog.Logger
	mu           sync.Mutex
}

func NewService(registryPath, reposDir string, logger zerolog.Logger) *Service {
	return &Service{
		registryPath: registryPath,
		reposDir:     reposDir,
		logger:       logger.With().Str("component", "gitops").Logger(),
	}
}

// List returns the registered repositories.
func (s *Service) List() ([]model.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns one registered repository.
func (s *Service) Get(id string) (*model.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repos, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range repos {
		if repos[i].ID == id {
			return &repos[i], nil
		}
	}
	return nil, &errdefs.NotFoundError{Kind: "repo", ID: id}
}

// Clone clones url into the repos directory and registers it. A name
// collision with an existing registration is rejected.
func (s *Service) Clone(ctx context.Context, name, url, branch string) (*model.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repos, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, repo := range repos {
		if repo.Name == name {
			return nil, errdefs.Validationf("repo %q already registered", name)
		}
	}

	path := filepath.Join(s.reposDir, name)
	opts := &git.CloneOptions{URL: url}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	s.logger.Info().Str("url", url).Str("path", path).Msg("cloning repository")
	if _, err := git.PlainCloneContext(ctx, path, false, opts); err != nil {
		_ = os.RemoveAll(path)
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}

	repo := model.Repo{
		ID:        platform.NewID(),
		Name:      name,
		URL:       url,
		Path:      path,
		Branch:    branch,
		CreatedAt: time.Now().UTC(),
	}
	repos = append(repos, repo)
	if err := s.save(repos); err != nil {
		return nil, err
	}
	return &repo, nil
}

// Pull fast-forwards a repository's checkout. An already up-to-date
// checkout is not an error.
func (s *Service) Pull(ctx context.Context, id string) (*model.RepoStatus, error) {
	repo, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	checkout, err := git.PlainOpen(repo.Path)
	if err != nil {
		return nil, fmt.Errorf("open repo %s: %w", repo.Path, err)
	}
	worktree, err := checkout.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree %s: %w", repo.Path, err)
	}

	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("pull %s: %w", repo.Name, err)
	}
	return s.status(repo)
}

// Status reports a repository's branch, HEAD and dirtiness.
func (s *Service) Status(id string) (*model.RepoStatus, error) {
	repo, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.status(repo)
}

// Remove drops a repository from the registry and deletes its checkout.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	repos, err := s.load()
	if err != nil {
		return err
	}
	kept := repos[:0]
	var removed *model.Repo
	for i := range repos {
		if repos[i].ID == id {
			removed = &repos[i]
			continue
		}
		kept = append(kept, repos[i])
	}
	if removed == nil {
		return &errdefs.NotFoundError{Kind: "repo", ID: id}
	}
	if err := s.save(kept); err != nil {
		return err
	}
	if err := os.RemoveAll(removed.Path); err != nil {
		return fmt.Errorf("remove checkout %s: %w", removed.Path, err)
	}
	return nil
}

func (s *Service) status(repo *model.Repo) (*model.RepoStatus, error) {
	checkout, err := git.PlainOpen(repo.Path)
	if err != nil {
		return nil, fmt.Errorf("open repo %s: %w", repo.Path, err)
	}

	head, err := checkout.Head()
	if err != nil {
		return nil, fmt.Errorf("head of %s: %w", repo.Name, err)
	}

	status := &model.RepoStatus{
		RepoID:     repo.ID,
		Branch:     head.Name().Short(),
		HeadCommit: head.Hash().String(),
	}

	worktree, err := checkout.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree %s: %w", repo.Path, err)
	}
	wtStatus, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("status %s: %w", repo.Name, err)
	}
	status.Dirty = !wtStatus.IsClean()

	if ahead, behind, err := s.divergence(checkout, head); err == nil {
		status.Ahead = ahead
		status.Behind = behind
	}
	return status, nil
}

// divergence counts commits between HEAD and its upstream on origin.
// Missing remote tracking info yields zeros.
func (s *Service) divergence(checkout *git.Repository, head *plumbing.Reference) (ahead, behind int, err error) {
	remoteRef, err := checkout.Reference(
		plumbing.NewRemoteReferenceName("origin", head.Name().Short()), true)
	if err != nil {
		return 0, 0, err
	}
	if remoteRef.Hash() == head.Hash() {
		return 0, 0, nil
	}

	localCommits, err := commitSet(checkout, head.Hash())
	if err != nil {
		return 0, 0, err
	}
	remoteCommits, err := commitSet(checkout, remoteRef.Hash())
	if err != nil {
		return 0, 0, err
	}

	for hash := range localCommits {
		if !remoteCommits[hash] {
			ahead++
		}
	}
	for hash := range remoteCommits {
		if !localCommits[hash] {
			behind++
		}
	}
	return ahead, behind, nil
}

func commitSet(checkout *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := checkout.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	set := make(map[plumbing.Hash]bool)
	for {
		commit, err := iter.Next()
		if err != nil {
			break
		}
		set[commit.Hash] = true
	}
	return set, nil
}

func (s *Service) load() ([]model.Repo, error) {
	data, err := os.ReadFile(s.registryPath)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Repo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read repo registry: %w", err)
	}
	var repos []model.Repo
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, fmt.Errorf("parse repo registry: %w", err)
	}
	return repos, nil
}

func (s *Service) save(repos []model.Repo) error {
	data, err := json.MarshalIndent(repos, "", "  ")
	if err != nil {
		return fmt.Errorf("encode repo registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.registryPath), 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	tmp := s.registryPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write repo registry: %w", err)
	}
	if err := os.Rename(tmp, s.registryPath); err != nil {
		return fmt.Errorf("replace repo registry: %w", err)
	}
	return nil
}
