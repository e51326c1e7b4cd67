package request

// UpdateSettings is the body of PUT /settings/backup. Secrets are
// write-only: GET responses blank them out.
type UpdateSettings struct {
	StorageBackend string `json:"storage_backend" validate:"required,oneof=local s3 rsync"`

	S3 struct {
		Endpoint  string `json:"endpoint"`
		Bucket    string `json:"bucket"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
		Region    string `json:"region"`
	} `json:"s3"`

	Rsync struct {
		Host       string `json:"host"`
		Username   string `json:"username"`
		RemotePath string `json:"remote_path"`
		SSHKeyPath string `json:"ssh_key_path"`
	} `json:"rsync"`

	Retention struct {
		LocalDays  int `json:"local_days" validate:"min=0,max=3650"`
		RemoteDays int `json:"remote_days" validate:"min=0,max=3650"`
	} `json:"retention"`
}
