// Package github is a thin client for the GitHub REST endpoints the chat app uses.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/extract"
)

const (
	DefaultAPIURL   = "https://api.github.com"
	DefaultUsername = "Luisnefelibato"
	DefaultBranch   = "main"
	pageSize        = 30
)

type Client struct {
	creds    *Credentials
	baseURL  string
	username string
	http     *http.Client
	logger   zerolog.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithUsername(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.username = name
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("component", "github").Logger() }
}

// NewClient creates a client that reads its token from creds on every call.
func NewClient(creds *Credentials, opts ...Option) *Client {
	if creds == nil {
		creds = NewCredentials(nil)
	}
	c := &Client{
		creds:    creds,
		baseURL:  DefaultAPIURL,
		username: DefaultUsername,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Username() string { return c.username }

func (c *Client) Credentials() *Credentials { return c.creds }

// ListRepositories lists a user's repositories, most recently updated first.
// An empty username means the configured one.
func (c *Client) ListRepositories(ctx context.Context, username string) ([]Repository, error) {
	if username == "" {
		username = c.username
	}
	q := url.Values{"sort": {"updated"}, "per_page": {fmt.Sprint(pageSize)}}
	var repos []Repository
	if err := c.get(ctx, "/users/"+url.PathEscape(username)+"/repos", q, &repos); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}

func (c *Client) GetRepository(ctx context.Context, name string) (*Repository, error) {
	var repo Repository
	if err := c.get(ctx, c.repoPath(name), nil, &repo); err != nil {
		return nil, fmt.Errorf("get repository %s: %w", name, err)
	}
	return &repo, nil
}

// CreateRepository creates a repository for the authenticated user with an initial commit.
func (c *Client) CreateRepository(ctx context.Context, req CreateRepositoryRequest) (*Repository, error) {
	if !c.creds.HasToken() {
		return nil, ErrAuthRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("repository name is required: %w", apperrors.ErrInvalidInput)
	}

	body := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"private":     req.Private,
		"auto_init":   true,
	}
	var repo Repository
	if err := c.send(ctx, http.MethodPost, "/user/repos", body, &repo); err != nil {
		return nil, fmt.Errorf("create repository %s: %w", req.Name, err)
	}
	c.logger.Info().Str("repo", repo.FullName).Bool("private", repo.Private).Msg("repository created")
	return &repo, nil
}

// GetFileContent fetches a file and decodes its base64 body.
func (c *Client) GetFileContent(ctx context.Context, repo, path string) (*FileContent, error) {
	var raw struct {
		FileContent
		Encoding string `json:"encoding"`
	}
	if err := c.get(ctx, c.repoPath(repo)+"/contents/"+escapePath(path), nil, &raw); err != nil {
		return nil, fmt.Errorf("get file %s: %w", path, err)
	}

	out := raw.FileContent
	if raw.Encoding == "base64" || raw.Encoding == "" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decode file %s: %w", path, err)
		}
		out.Content = string(decoded)
	}
	return &out, nil
}

// CreateOrUpdateFile commits content at path. sha is required only when replacing an existing file.
func (c *Client) CreateOrUpdateFile(ctx context.Context, repo, path, content, message, sha string) (*CommitResult, error) {
	if !c.creds.HasToken() {
		return nil, ErrAuthRequired
	}

	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}
	if sha != "" {
		body["sha"] = sha
	}
	var result CommitResult
	if err := c.send(ctx, http.MethodPut, c.repoPath(repo)+"/contents/"+escapePath(path), body, &result); err != nil {
		return nil, fmt.Errorf("write file %s: %w", path, err)
	}
	return &result, nil
}

// CommitMessage is the message used for each file of a batch upload.
func CommitMessage(name string) string {
	return fmt.Sprintf("Add %s - Generated by Maya", name)
}

// UploadFiles writes each file in order, one commit per file.
// A failed file is recorded and the rest still run.
func (c *Client) UploadFiles(ctx context.Context, repo string, files []extract.ExtractedFile) ([]UploadResult, error) {
	if !c.creds.HasToken() {
		return nil, ErrAuthRequired
	}

	results := make([]UploadResult, 0, len(files))
	for _, f := range files {
		data, err := c.CreateOrUpdateFile(ctx, repo, f.Name, f.Content, CommitMessage(f.Name), "")
		if err != nil {
			c.logger.Warn().Err(err).Str("repo", repo).Str("file", f.Name).Msg("upload failed")
			results = append(results, UploadResult{File: f.Name, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, UploadResult{File: f.Name, Success: true, Data: data})
	}

	ok, failed := Summarize(results)
	c.logger.Info().Str("repo", repo).Int("ok", ok).Int("failed", failed).Msg("upload finished")
	return results, nil
}

// GetRepositoryTree lists every entry on the main branch.
func (c *Client) GetRepositoryTree(ctx context.Context, repo string) ([]TreeEntry, error) {
	var out struct {
		Tree      []TreeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}
	q := url.Values{"recursive": {"1"}}
	if err := c.get(ctx, c.repoPath(repo)+"/git/trees/"+DefaultBranch, q, &out); err != nil {
		return nil, fmt.Errorf("get tree of %s: %w", repo, err)
	}
	return out.Tree, nil
}

func (c *Client) ForkRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if !c.creds.HasToken() {
		return nil, ErrAuthRequired
	}
	var fork Repository
	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/forks"
	if err := c.send(ctx, http.MethodPost, path, map[string]any{}, &fork); err != nil {
		return nil, fmt.Errorf("fork %s/%s: %w", owner, repo, err)
	}
	return &fork, nil
}

// ListIssues returns up to one page of open issues.
func (c *Client) ListIssues(ctx context.Context, repo string) ([]Issue, error) {
	q := url.Values{"state": {"open"}, "per_page": {fmt.Sprint(pageSize)}}
	var issues []Issue
	if err := c.get(ctx, c.repoPath(repo)+"/issues", q, &issues); err != nil {
		return nil, fmt.Errorf("list issues of %s: %w", repo, err)
	}
	return issues, nil
}

func (c *Client) CreateIssue(ctx context.Context, repo, title, body string) (*Issue, error) {
	if !c.creds.HasToken() {
		return nil, ErrAuthRequired
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("issue title is required: %w", apperrors.ErrInvalidInput)
	}
	var issue Issue
	payload := map[string]string{"title": title, "body": body}
	if err := c.send(ctx, http.MethodPost, c.repoPath(repo)+"/issues", payload, &issue); err != nil {
		return nil, fmt.Errorf("create issue in %s: %w", repo, err)
	}
	return &issue, nil
}

func (c *Client) repoPath(repo string) string {
	return "/repos/" + url.PathEscape(c.username) + "/" + url.PathEscape(repo)
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &apiErr)
		c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("github request failed")
		return apperrors.FromStatus(resp.StatusCode, "github %d: %s", resp.StatusCode, statusMessage(resp.StatusCode, apiErr.Message))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusMessage(status int, message string) string {
	switch status {
	case http.StatusUnauthorized:
		return "invalid authentication token"
	case http.StatusUnprocessableEntity:
		if message == "" {
			return "already exists or the name is invalid"
		}
		return message + " (already exists or the name is invalid)"
	}
	if message == "" {
		return http.StatusText(status)
	}
	return message
}
