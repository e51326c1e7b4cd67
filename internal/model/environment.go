package model

// DBCredentials are the connection parameters for an environment's
// PostgreSQL instance, discovered from docker-compose.yml.
type DBCredentials struct {
	User     string `json:"user"`
	Password string `json:"-"`
	Host     string `json:"host"`
	Port     string `json:"port"`
}

// Environment is one isolated deployment target (e.g. test, staging,
// prod) with its container and data directories.
type Environment struct {
	Name          string        `json:"name"`
	ServiceName   string        `json:"service_name"`
	ContainerName string        `json:"container_name"`
	DB            DBCredentials `json:"db"`
	FilestoreDir  string        `json:"filestore_dir"`
	AddonsDir     string        `json:"addons_dir"`
}

// ContainerStatus is a snapshot of an environment's container state.
type ContainerStatus struct {
	Environment string `json:"environment"`
	ContainerID string `json:"container_id,omitempty"`
	State       string `json:"state"`
	Health      string `json:"health,omitempty"`
	Running     bool   `json:"running"`
	StartedAt   string `json:"started_at,omitempty"`
}

// DatabaseInfo describes the resolvable database of an environment.
type DatabaseInfo struct {
	Environment string `json:"environment"`
	Name        string `json:"name,omitempty"`
	Size        string `json:"size,omitempty"`
	TableCount  int    `json:"table_count"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
