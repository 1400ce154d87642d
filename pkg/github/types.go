package github

type Owner struct {
	Login   string `json:"login"`
	HTMLURL string `json:"html_url,omitempty"`
}

// Repository is the typed view of a GitHub repository record.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	CloneURL      string `json:"clone_url,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Language      string `json:"language,omitempty"`
	Stars         int    `json:"stargazers_count"`
	Forks         int    `json:"forks_count"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	Owner         Owner  `json:"owner"`
}

type CreateRepositoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

// FileContent is a file fetched from the contents API with its body decoded.
type FileContent struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int    `json:"size"`
	HTMLURL string `json:"html_url,omitempty"`
	Content string `json:"content"`
}

// CommitResult is the response to a create-or-update-content call.
type CommitResult struct {
	Content struct {
		Name    string `json:"name"`
		Path    string `json:"path"`
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"content"`
	Commit struct {
		SHA     string `json:"sha"`
		Message string `json:"message"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int    `json:"size,omitempty"`
}

type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
	User    Owner  `json:"user"`
}

// UploadResult records the outcome of one file in a batch upload.
type UploadResult struct {
	File    string        `json:"file"`
	Success bool          `json:"success"`
	Data    *CommitResult `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Summarize counts successful and failed uploads.
func Summarize(results []UploadResult) (ok, failed int) {
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
