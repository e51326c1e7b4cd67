package request

// CopyEnvironment is the body of POST /copy.
type CopyEnvironment struct {
	SourceEnv          string `json:"source_env" validate:"required,ident"`
	TargetEnv          string `json:"target_env" validate:"required,ident"`
	IncludeFilestore   bool   `json:"include_filestore"`
	IncludeAddons      bool   `json:"include_addons"`
	TargetDatabaseName string `json:"target_database_name" validate:"omitempty,ident"`
}
