package model

// CopyRequest asks for a live copy of one environment's database (and
// optionally filestore/addons) into another. TargetDatabaseName is
// required only when the target environment has no existing database.
type CopyRequest struct {
	SourceEnv          string `json:"source_env"`
	TargetEnv          string `json:"target_env"`
	IncludeFilestore   bool   `json:"include_filestore"`
	IncludeAddons      bool   `json:"include_addons"`
	TargetDatabaseName string `json:"target_database_name,omitempty"`
}

// CopyResult is the complete, ordered account of a copy operation.
// Success reflects the critical path only (stop, dump, recreate,
// restore): a failed filestore or addons sync leaves Success true with a
// non-empty Errors list.
type CopyResult struct {
	Success            bool     `json:"success"`
	SourceEnv          string   `json:"source_env"`
	TargetEnv          string   `json:"target_env"`
	SourceDatabaseName string   `json:"source_database_name,omitempty"`
	TargetDatabaseName string   `json:"target_database_name,omitempty"`
	DatabaseCopied     bool     `json:"database_copied"`
	FilestoreCopied    bool     `json:"filestore_copied"`
	AddonsCopied       bool     `json:"addons_copied"`
	Errors             []string `json:"errors"`
}
