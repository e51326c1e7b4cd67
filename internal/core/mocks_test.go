package core

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/opsdash/internal/model"
)

type mockInventory struct{ mock.Mock }

func (m *mockInventory) Environments() ([]model.Environment, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Environment), args.Error(1)
}

func (m *mockInventory) Environment(name string) (*model.Environment, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Environment), args.Error(1)
}

func (m *mockInventory) Credentials(name string) (*model.Environment, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Environment), args.Error(1)
}

type mockDatabaseManager struct{ mock.Mock }

func (m *mockDatabaseManager) ListDatabases(ctx context.Context, creds model.DBCredentials) ([]string, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDatabaseManager) PrimaryDatabase(ctx context.Context, creds model.DBCredentials, env string) (string, error) {
	args := m.Called(ctx, creds, env)
	return args.String(0), args.Error(1)
}

func (m *mockDatabaseManager) Exists(ctx context.Context, creds model.DBCredentials, name string) (bool, error) {
	args := m.Called(ctx, creds, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockDatabaseManager) Dump(ctx context.Context, creds model.DBCredentials, name, dumpPath string) error {
	return m.Called(ctx, creds, name, dumpPath).Error(0)
}

func (m *mockDatabaseManager) Restore(ctx context.Context, creds model.DBCredentials, name, dumpPath string) error {
	return m.Called(ctx, creds, name, dumpPath).Error(0)
}

func (m *mockDatabaseManager) Create(ctx context.Context, creds model.DBCredentials, name string) error {
	return m.Called(ctx, creds, name).Error(0)
}

func (m *mockDatabaseManager) Drop(ctx context.Context, creds model.DBCredentials, name string) error {
	return m.Called(ctx, creds, name).Error(0)
}

func (m *mockDatabaseManager) TerminateConnections(ctx context.Context, creds model.DBCredentials, name string) error {
	return m.Called(ctx, creds, name).Error(0)
}

func (m *mockDatabaseManager) Info(ctx context.Context, creds model.DBCredentials, name string) (*model.DatabaseInfo, error) {
	args := m.Called(ctx, creds, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DatabaseInfo), args.Error(1)
}

type mockFilestoreManager struct{ mock.Mock }

func (m *mockFilestoreManager) Archive(ctx context.Context, srcDir, outFile string) error {
	return m.Called(ctx, srcDir, outFile).Error(0)
}

func (m *mockFilestoreManager) Extract(ctx context.Context, archive, dstDir string) error {
	return m.Called(ctx, archive, dstDir).Error(0)
}

func (m *mockFilestoreManager) SyncDir(ctx context.Context, srcDir, dstDir string) error {
	return m.Called(ctx, srcDir, dstDir).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) Append(record model.BackupRecord) error {
	return m.Called(record).Error(0)
}

func (m *mockCatalog) List(env string) ([]model.BackupRecord, error) {
	args := m.Called(env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BackupRecord), args.Error(1)
}

func (m *mockCatalog) Get(id string) (*model.BackupRecord, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BackupRecord), args.Error(1)
}

func (m *mockCatalog) Remove(id string) error {
	return m.Called(id).Error(0)
}

func (m *mockCatalog) MarkUploaded(id, backend string) error {
	return m.Called(id, backend).Error(0)
}

type mockSettings struct{ mock.Mock }

func (m *mockSettings) Load() (model.BackupSettings, error) {
	args := m.Called()
	return args.Get(0).(model.BackupSettings), args.Error(1)
}

type mockController struct{ mock.Mock }

func (m *mockController) Status(ctx context.Context, containerName string) (*model.ContainerStatus, error) {
	args := m.Called(ctx, containerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContainerStatus), args.Error(1)
}

func (m *mockController) Start(ctx context.Context, containerName string) error {
	return m.Called(ctx, containerName).Error(0)
}

func (m *mockController) Stop(ctx context.Context, containerName string) error {
	return m.Called(ctx, containerName).Error(0)
}

func (m *mockController) Restart(ctx context.Context, containerName string) error {
	return m.Called(ctx, containerName).Error(0)
}

func (m *mockController) TailLogs(ctx context.Context, containerName string, lines int) (string, error) {
	args := m.Called(ctx, containerName, lines)
	return args.String(0), args.Error(1)
}

type mockBackend struct{ mock.Mock }

func (m *mockBackend) Name() string {
	return m.Called().String(0)
}

func (m *mockBackend) TestConnection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBackend) Upload(ctx context.Context, localPath, remotePath string) error {
	return m.Called(ctx, localPath, remotePath).Error(0)
}

// memorySink collects audit entries in memory.
type memorySink struct {
	entries []model.AuditEntry
}

func (s *memorySink) Append(entry model.AuditEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) last() model.AuditEntry {
	if len(s.entries) == 0 {
		return model.AuditEntry{}
	}
	return s.entries[len(s.entries)-1]
}
