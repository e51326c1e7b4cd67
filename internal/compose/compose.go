// Package compose discovers the managed environments from the
// deployment's docker-compose.yml: container and service names plus the
// PostgreSQL credentials each service carries in its environment block.
// The file is re-read on every lookup so the Copy Orchestrator always
// sees fresh state.
package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

const addonsMount = "/mnt/extra-addons"

// Inventory resolves environments from a docker-compose file.
type Inventory struct {
	composeFile string
	baseDir     string
}

// NewInventory creates an Inventory reading composeFile. Environment
// data directories (filestore, addons) are resolved under baseDir.
func NewInventory(composeFile, baseDir string) *Inventory {
	return &Inventory{composeFile: composeFile, baseDir: baseDir}
}

type composeDoc struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	ContainerName string   `yaml:"container_name"`
	Environment   envVars  `yaml:"environment"`
	Volumes       []string `yaml:"volumes"`
}

// envVars accepts both YAML forms of a compose environment block:
// a mapping ("KEY: value") and a sequence ("- KEY=value").
type envVars map[string]string

func (e *envVars) UnmarshalYAML(node *yaml.Node) error {
	out := map[string]string{}
	switch node.Kind {
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return err
		}
		out = m
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		for _, item := range list {
			key, value, _ := strings.Cut(item, "=")
			out[key] = value
		}
	default:
		return fmt.Errorf("unsupported environment block (line %d)", node.Line)
	}
	*e = out
	return nil
}

// Environments parses the compose file and returns every discovered
// environment, sorted by name.
func (i *Inventory) Environments() ([]model.Environment, error) {
	data, err := os.ReadFile(i.composeFile)
	if err != nil {
		return nil, fmt.Errorf("read compose file: %w", err)
	}

	var doc composeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse compose file: %w", err)
	}

	var envs []model.Environment
	for serviceName, svc := range doc.Services {
		envName := environmentName(svc.Volumes)
		if envName == "" {
			continue
		}

		containerName := svc.ContainerName
		if containerName == "" {
			containerName = serviceName
		}

		port := svc.Environment["PORT"]
		if port == "" {
			port = "5432"
		}

		envs = append(envs, model.Environment{
			Name:          envName,
			ServiceName:   serviceName,
			ContainerName: containerName,
			DB: model.DBCredentials{
				User:     svc.Environment["USER"],
				Password: svc.Environment["PASSWORD"],
				Host:     "localhost",
				Port:     port,
			},
			FilestoreDir: filepath.Join(i.baseDir, envName, "filestore"),
			AddonsDir:    filepath.Join(i.baseDir, envName, "addons"),
		})
	}

	sort.Slice(envs, func(a, b int) bool { return envs[a].Name < envs[b].Name })
	return envs, nil
}

// Environment resolves a single environment by name.
func (i *Inventory) Environment(name string) (*model.Environment, error) {
	envs, err := i.Environments()
	if err != nil {
		return nil, err
	}
	for idx := range envs {
		if envs[idx].Name == name {
			return &envs[idx], nil
		}
	}
	return nil, &errdefs.NotFoundError{Kind: "environment", ID: name}
}

// Credentials resolves the database credentials for an environment,
// failing with a ValidationError if the compose file carries none.
func (i *Inventory) Credentials(name string) (*model.Environment, error) {
	env, err := i.Environment(name)
	if err != nil {
		return nil, err
	}
	if env.DB.User == "" {
		return nil, errdefs.Validationf("no database user configured for environment %s", name)
	}
	if env.DB.Password == "" {
		return nil, errdefs.Validationf("no database password configured for environment %s", name)
	}
	return env, nil
}

// environmentName derives the environment name from the addons volume
// mount, e.g. "/srv/odoo/staging/addons:/mnt/extra-addons" -> "staging".
func environmentName(volumes []string) string {
	for _, vol := range volumes {
		hostPath, rest, ok := strings.Cut(vol, ":")
		if !ok || !strings.HasPrefix(rest, addonsMount) {
			continue
		}
		return filepath.Base(filepath.Dir(hostPath))
	}
	return ""
}
