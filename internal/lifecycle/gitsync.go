package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	githubAPI      = "https://api.github.com"
	defaultBranch  = "master"
	commitTsLayout = "2006-01-02 15:04"
)

// GitSyncConfig configures the data-directory backup.
type GitSyncConfig struct {
	// Dir is the repository working directory (the data dir).
	Dir string

	// Token authenticates against the GitHub API and the push remote.
	Token string

	// RepoName is the remote repository name. Empty defaults to the
	// working directory's base name.
	RepoName string

	// CommitterName and CommitterEmail pin the commit identity.
	CommitterName  string
	CommitterEmail string

	// RepoDescription and RepoHomepage are set when the repository has to
	// be created.
	RepoDescription string
	RepoHomepage    string
}

// GitSync commits the data directory and pushes it to a GitHub remote,
// creating the remote repository on first use.
type GitSync struct {
	cfg    GitSyncConfig
	client *http.Client
	clock  func() time.Time
	logger *slog.Logger
}

// NewGitSync creates a GitSync.
func NewGitSync(cfg GitSyncConfig, logger *slog.Logger) *GitSync {
	if cfg.RepoName == "" {
		abs, err := filepath.Abs(cfg.Dir)
		if err == nil {
			cfg.RepoName = filepath.Base(abs)
		}
	}
	return &GitSync{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		clock:  func() time.Time { return time.Now().UTC() },
		logger: logger.With(slog.String("component", "git_sync")),
	}
}

// WithClock overrides the sync clock. Used by tests.
func (g *GitSync) WithClock(fn func() time.Time) *GitSync {
	g.clock = fn
	return g
}

// Sync ensures the remote exists, commits the working directory, and pushes.
func (g *GitSync) Sync(ctx context.Context) error {
	if g.cfg.Token == "" {
		g.logger.WarnContext(ctx, "github token missing, skipping sync")
		return nil
	}

	username, err := g.ensureRemoteRepo(ctx)
	if err != nil {
		return fmt.Errorf("lifecycle: ensure remote: %w", err)
	}

	if err := g.configureRemote(ctx, username); err != nil {
		return fmt.Errorf("lifecycle: configure remote: %w", err)
	}

	if err := g.commitAndPush(ctx); err != nil {
		return fmt.Errorf("lifecycle: commit and push: %w", err)
	}
	return nil
}

// ensureRemoteRepo verifies the repository exists on GitHub, creating it
// when the API answers 404, and returns the token owner's login.
func (g *GitSync) ensureRemoteRepo(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := g.apiRequest(ctx, http.MethodGet, githubAPI+"/user", nil, &user); err != nil {
		return "", fmt.Errorf("verify user: %w", err)
	}

	repoURL := fmt.Sprintf("%s/repos/%s/%s", githubAPI, user.Login, g.cfg.RepoName)
	err := g.apiRequest(ctx, http.MethodGet, repoURL, nil, nil)
	if err == nil {
		g.logger.DebugContext(ctx, "remote repository exists",
			slog.String("repo", g.cfg.RepoName),
		)
		return user.Login, nil
	}
	if !isStatus(err, http.StatusNotFound) {
		return "", fmt.Errorf("check repo: %w", err)
	}

	g.logger.InfoContext(ctx, "creating remote repository",
		slog.String("repo", g.cfg.RepoName),
	)
	create := map[string]any{
		"name":        g.cfg.RepoName,
		"private":     false,
		"description": g.cfg.RepoDescription,
		"homepage":    g.cfg.RepoHomepage,
	}
	if err := g.apiRequest(ctx, http.MethodPost, githubAPI+"/user/repos", create, nil); err != nil {
		return "", fmt.Errorf("create repo: %w", err)
	}
	return user.Login, nil
}

// configureRemote points origin at the authenticated push URL, initialising
// the local repository first if needed.
func (g *GitSync) configureRemote(ctx context.Context, username string) error {
	if _, err := os.Stat(filepath.Join(g.cfg.Dir, ".git")); os.IsNotExist(err) {
		if err := g.git(ctx, "init"); err != nil {
			return err
		}
		if err := g.git(ctx, "branch", "-M", defaultBranch); err != nil {
			return err
		}
	}

	pushURL := fmt.Sprintf("https://%s@github.com/%s/%s.git", g.cfg.Token, username, g.cfg.RepoName)

	// Remove may fail when origin was never configured.
	_ = g.git(ctx, "remote", "remove", "origin")
	return g.git(ctx, "remote", "add", "origin", pushURL)
}

func (g *GitSync) commitAndPush(ctx context.Context) error {
	if err := g.git(ctx, "config", "user.name", g.cfg.CommitterName); err != nil {
		return err
	}
	if err := g.git(ctx, "config", "user.email", g.cfg.CommitterEmail); err != nil {
		return err
	}
	if err := g.git(ctx, "add", "."); err != nil {
		return err
	}

	msg := "Auto-update: " + g.clock().Format(commitTsLayout)
	if err := g.git(ctx, "commit", "-m", msg, "--allow-empty"); err != nil {
		return err
	}

	if err := g.git(ctx, "push", "-u", "origin", defaultBranch); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "data directory pushed",
		slog.String("repo", g.cfg.RepoName),
	)
	return nil
}

// git runs a git subcommand in the data directory.
func (g *GitSync) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.cfg.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		// The token appears in remote URLs; keep it out of errors.
		text := strings.ReplaceAll(string(out), g.cfg.Token, "***")
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(text))
	}
	return nil
}

// statusError reports an unexpected GitHub API response.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("github api status %d: %s", e.status, e.message)
}

func isStatus(err error, status int) bool {
	se, ok := err.(*statusError)
	return ok && se.status == status
}

// apiRequest performs an authenticated GitHub API call, decoding the JSON
// response into out when out is non-nil.
func (g *GitSync) apiRequest(ctx context.Context, method, url string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+g.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		return &statusError{status: resp.StatusCode, message: apiErr.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
