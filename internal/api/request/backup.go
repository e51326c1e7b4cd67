package request

// CreateBackup is the body of POST /environments/{env}/backups.
type CreateBackup struct {
	Kind              string `json:"kind" validate:"required,oneof=full database filestore"`
	Description       string `json:"description" validate:"max=500"`
	UploadAfterCreate bool   `json:"upload_after_create"`
}

// UploadBackup is the body of POST /backups/{id}/upload. The body is
// currently empty; the type exists so the route can grow options
// without breaking clients.
type UploadBackup struct{}
