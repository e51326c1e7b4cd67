package compose

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/opsdash/internal/errdefs"
)

const composeFixture = `
services:
  odoo-test:
    image: odoo:19
    container_name: odoo-test
    environment:
      USER: odoo_test
      PASSWORD: secret1
      PORT: "5433"
    volumes:
      - /srv/odoo/test/addons:/mnt/extra-addons
      - /srv/odoo/test/filestore:/var/lib/odoo/filestore
  odoo-prod:
    image: odoo:19
    container_name: odoo-prod
    environment:
      - USER=odoo_prod
      - PASSWORD=secret2
    volumes:
      - /srv/odoo/prod/addons:/mnt/extra-addons
  redis:
    image: redis:7
`

func writeCompose(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestEnvironments_DiscoversServicesWithAddonsMount(t *testing.T) {
	inv := NewInventory(writeCompose(t, composeFixture), "/srv/odoo")

	envs, err := inv.Environments()
	require.NoError(t, err)
	require.Len(t, envs, 2, "redis has no addons mount and must be skipped")

	assert.Equal(t, "prod", envs[0].Name)
	assert.Equal(t, "test", envs[1].Name)

	test := envs[1]
	assert.Equal(t, "odoo-test", test.ContainerName)
	assert.Equal(t, "odoo-test", test.ServiceName)
	assert.Equal(t, "odoo_test", test.DB.User)
	assert.Equal(t, "secret1", test.DB.Password)
	assert.Equal(t, "5433", test.DB.Port)
	assert.Equal(t, "localhost", test.DB.Host)
	assert.Equal(t, "/srv/odoo/test/filestore", test.FilestoreDir)
	assert.Equal(t, "/srv/odoo/test/addons", test.AddonsDir)
}

func TestEnvironments_ParsesSequenceEnvironmentBlock(t *testing.T) {
	inv := NewInventory(writeCompose(t, composeFixture), "/srv/odoo")

	env, err := inv.Environment("prod")
	require.NoError(t, err)
	assert.Equal(t, "odoo_prod", env.DB.User)
	assert.Equal(t, "secret2", env.DB.Password)
	assert.Equal(t, "5432", env.DB.Port, "PORT defaults when absent")
}

func TestEnvironment_UnknownName(t *testing.T) {
	inv := NewInventory(writeCompose(t, composeFixture), "/srv/odoo")

	_, err := inv.Environment("qa")
	var nf *errdefs.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestCredentials_MissingPassword(t *testing.T) {
	fixture := `
services:
  odoo-test:
    container_name: odoo-test
    environment:
      USER: odoo_test
    volumes:
      - /srv/odoo/test/addons:/mnt/extra-addons
`
	inv := NewInventory(writeCompose(t, fixture), "/srv/odoo")

	_, err := inv.Credentials("test")
	var ve *errdefs.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "password")
}

func TestEnvironments_MissingComposeFile(t *testing.T) {
	inv := NewInventory("/nonexistent/docker-compose.yml", "/srv/odoo")
	_, err := inv.Environments()
	require.Error(t, err)
}
