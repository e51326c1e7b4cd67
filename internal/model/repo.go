package model

import "time"

// Repo is a managed git checkout.
type Repo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	Branch    string    `json:"branch,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RepoStatus is a point-in-time view of a checkout relative to its remote.
type RepoStatus struct {
	RepoID     string `json:"repo_id"`
	Branch     string `json:"branch"`
	HeadCommit string `json:"head_commit"`
	Ahead      int    `json:"ahead"`
	Behind     int    `json:"behind"`
	Dirty      bool   `json:"dirty"`
}
