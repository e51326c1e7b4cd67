package model

// Storage backend names.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
	StorageBackendRsync = "rsync"
)

// S3Settings configures the S3-compatible object store backend.
type S3Settings struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
}

// RsyncSettings configures the rsync-over-SSH backend.
type RsyncSettings struct {
	Host       string `json:"host"`
	Username   string `json:"username"`
	RemotePath string `json:"remote_path"`
	SSHKeyPath string `json:"ssh_key_path"`
}

// RetentionSettings holds the age thresholds for automatic pruning.
type RetentionSettings struct {
	LocalDays  int `json:"local_days"`
	RemoteDays int `json:"remote_days"`
}

// BackupSettings is the operator-editable backup configuration,
// persisted as a single JSON document with replace-on-write semantics.
type BackupSettings struct {
	StorageBackend string            `json:"storage_backend"`
	S3             S3Settings        `json:"s3"`
	Rsync          RsyncSettings     `json:"rsync"`
	Retention      RetentionSettings `json:"retention"`
}

// DefaultBackupSettings returns local-only storage with a week of
// local retention, matching a fresh install.
func DefaultBackupSettings() BackupSettings {
	return BackupSettings{
		StorageBackend: StorageBackendLocal,
		S3:             S3Settings{Region: "us-east-1"},
		Retention:      RetentionSettings{LocalDays: 7, RemoteDays: 30},
	}
}
