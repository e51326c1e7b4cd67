package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

var stagingEnv = &model.Environment{
	Name:          "staging",
	ServiceName:   "odoo-staging",
	ContainerName: "odoo-staging",
	DB:            model.DBCredentials{User: "odoo", Password: "pw", Host: "localhost", Port: "5433"},
	FilestoreDir:  "/srv/odoo/staging/filestore",
	AddonsDir:     "/srv/odoo/staging/addons",
}

type copyFixture struct {
	svc       *CopyService
	inventory *mockInventory
	db        *mockDatabaseManager
	fs        *mockFilestoreManager
	ctrl      *mockController
	sink      *memorySink
	flights   *Flights
}

func newCopyFixture(t *testing.T) *copyFixture {
	t.Helper()
	f := &copyFixture{
		inventory: &mockInventory{},
		db:        &mockDatabaseManager{},
		fs:        &mockFilestoreManager{},
		ctrl:      &mockController{},
		sink:      &memorySink{},
		flights:   NewFlights(),
	}
	f.svc = NewCopyService(
		t.TempDir(), time.Minute,
		f.inventory, f.db, f.fs, f.ctrl,
		f.sink, f.flights, zerolog.Nop(),
	)
	return f
}

func (f *copyFixture) expectEnvironments() {
	f.inventory.On("Credentials", "prod").Return(prodEnv, nil)
	f.inventory.On("Credentials", "staging").Return(stagingEnv, nil)
}

func (f *copyFixture) expectCriticalPath() {
	f.db.On("PrimaryDatabase", mock.Anything, prodEnv.DB, "prod").Return("prod_main", nil)
	f.db.On("PrimaryDatabase", mock.Anything, stagingEnv.DB, "staging").Return("staging_main", nil)
	f.ctrl.On("Stop", mock.Anything, "odoo-staging").Return(nil)
	f.db.On("Dump", mock.Anything, prodEnv.DB, "prod_main", mock.Anything).Return(nil)
	f.db.On("Exists", mock.Anything, stagingEnv.DB, "staging_main").Return(true, nil)
	f.db.On("TerminateConnections", mock.Anything, stagingEnv.DB, "staging_main").Return(nil)
	f.db.On("Drop", mock.Anything, stagingEnv.DB, "staging_main").Return(nil)
	f.db.On("Create", mock.Anything, stagingEnv.DB, "staging_main").Return(nil)
	f.db.On("Restore", mock.Anything, stagingEnv.DB, "staging_main", mock.Anything).Return(nil)
	f.ctrl.On("Start", mock.Anything, "odoo-staging").Return(nil)
}

func TestCopyFullSuccess(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	f.expectCriticalPath()
	f.fs.On("SyncDir", mock.Anything, prodEnv.FilestoreDir, stagingEnv.FilestoreDir).Return(nil)
	f.fs.On("SyncDir", mock.Anything, prodEnv.AddonsDir, stagingEnv.AddonsDir).Return(nil)

	result, err := f.svc.Copy(context.Background(), model.CopyRequest{
		SourceEnv: "prod", TargetEnv: "staging",
		IncludeFilestore: true, IncludeAddons: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.DatabaseCopied)
	assert.True(t, result.FilestoreCopied)
	assert.True(t, result.AddonsCopied)
	assert.Equal(t, "prod_main", result.SourceDatabaseName)
	assert.Equal(t, "staging_main", result.TargetDatabaseName, "resolved from the target's existing primary database")
	assert.Empty(t, result.Errors)

	f.ctrl.AssertCalled(t, "Stop", mock.Anything, "odoo-staging")
	f.ctrl.AssertCalled(t, "Start", mock.Anything, "odoo-staging")
	assert.False(t, f.flights.Busy("prod"))
	assert.False(t, f.flights.Busy("staging"))
	assert.Equal(t, model.AuditStatusSuccess, f.sink.last().Status)
	assert.Equal(t, model.AuditCategoryCopy, f.sink.last().Category)
}

func TestCopyRejectsSameEnvironment(t *testing.T) {
	f := newCopyFixture(t)
	_, err := f.svc.Copy(context.Background(), model.CopyRequest{SourceEnv: "prod", TargetEnv: "prod"})
	var verr *errdefs.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCopyRejectsInvalidTargetDatabaseName(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	_, err := f.svc.Copy(context.Background(), model.CopyRequest{
		SourceEnv: "prod", TargetEnv: "staging",
		TargetDatabaseName: "bad;drop",
	})
	var verr *errdefs.ValidationError
	require.ErrorAs(t, err, &verr)
	f.ctrl.AssertNotCalled(t, "Stop", mock.Anything, mock.Anything)
}

func TestCopyRejectsTargetWithoutDatabase(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	f.db.On("PrimaryDatabase", mock.Anything, stagingEnv.DB, "staging").
		Return("", errdefs.Validationf("no database found for environment staging"))

	_, err := f.svc.Copy(context.Background(), model.CopyRequest{SourceEnv: "prod", TargetEnv: "staging"})
	var verr *errdefs.ValidationError
	require.ErrorAs(t, err, &verr)

	f.ctrl.AssertNotCalled(t, "Stop", mock.Anything, mock.Anything)
	f.db.AssertNotCalled(t, "Dump", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.db.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, f.flights.Busy("prod"))
	assert.False(t, f.flights.Busy("staging"))
}

func TestCopyRejectedWhileTargetBusy(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	f.db.On("PrimaryDatabase", mock.Anything, stagingEnv.DB, "staging").Return("staging_main", nil)
	release, err := f.flights.TryAcquire("staging")
	require.NoError(t, err)
	defer release()

	_, err = f.svc.Copy(context.Background(), model.CopyRequest{SourceEnv: "prod", TargetEnv: "staging"})
	var conflict *errdefs.ConcurrencyError
	require.ErrorAs(t, err, &conflict)
	assert.False(t, f.flights.Busy("prod"), "partial lock must be released")
}

func TestCopyRestoreFailureStillRestartsTarget(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	f.db.On("PrimaryDatabase", mock.Anything, prodEnv.DB, "prod").Return("prod_main", nil)
	f.db.On("PrimaryDatabase", mock.Anything, stagingEnv.DB, "staging").Return("staging_main", nil)
	f.ctrl.On("Stop", mock.Anything, "odoo-staging").Return(nil)
	f.db.On("Dump", mock.Anything, prodEnv.DB, "prod_main", mock.Anything).Return(nil)
	f.db.On("Exists", mock.Anything, stagingEnv.DB, "staging_main").Return(false, nil)
	f.db.On("Create", mock.Anything, stagingEnv.DB, "staging_main").Return(nil)
	f.db.On("Restore", mock.Anything, stagingEnv.DB, "staging_main", mock.Anything).
		Return(&errdefs.ExecutionError{Op: "psql", Detail: "syntax error"})
	f.ctrl.On("Start", mock.Anything, "odoo-staging").Return(nil)

	result, err := f.svc.Copy(context.Background(), model.CopyRequest{SourceEnv: "prod", TargetEnv: "staging"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.False(t, result.DatabaseCopied)
	require.NotEmpty(t, result.Errors)
	f.ctrl.AssertCalled(t, "Start", mock.Anything, "odoo-staging")
	f.db.AssertNotCalled(t, "Drop", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, model.AuditStatusFailure, f.sink.last().Status)
}

func TestCopyStopFailureAbortsBeforeDump(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	f.db.On("PrimaryDatabase", mock.Anything, prodEnv.DB, "prod").Return("prod_main", nil)
	f.db.On("PrimaryDatabase", mock.Anything, stagingEnv.DB, "staging").Return("staging_main", nil)
	f.ctrl.On("Stop", mock.Anything, "odoo-staging").Return(errors.New("no such container"))

	result, err := f.svc.Copy(context.Background(), model.CopyRequest{SourceEnv: "prod", TargetEnv: "staging"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	f.db.AssertNotCalled(t, "Dump", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ctrl.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestCopyFilestoreFailureDegradesButSucceeds(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	f.expectCriticalPath()
	f.fs.On("SyncDir", mock.Anything, prodEnv.FilestoreDir, stagingEnv.FilestoreDir).
		Return(errdefs.Validationf("source directory not readable"))
	f.fs.On("SyncDir", mock.Anything, prodEnv.AddonsDir, stagingEnv.AddonsDir).Return(nil)

	result, err := f.svc.Copy(context.Background(), model.CopyRequest{
		SourceEnv: "prod", TargetEnv: "staging",
		IncludeFilestore: true, IncludeAddons: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Success, "database copy succeeded")
	assert.False(t, result.FilestoreCopied)
	assert.True(t, result.AddonsCopied)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "filestore sync")
}

func TestCopyCustomTargetDatabaseName(t *testing.T) {
	f := newCopyFixture(t)
	f.expectEnvironments()
	f.db.On("PrimaryDatabase", mock.Anything, prodEnv.DB, "prod").Return("prod_main", nil)
	f.ctrl.On("Stop", mock.Anything, "odoo-staging").Return(nil)
	f.db.On("Dump", mock.Anything, prodEnv.DB, "prod_main", mock.Anything).Return(nil)
	f.db.On("Exists", mock.Anything, stagingEnv.DB, "staging_restore").Return(false, nil)
	f.db.On("Create", mock.Anything, stagingEnv.DB, "staging_restore").Return(nil)
	f.db.On("Restore", mock.Anything, stagingEnv.DB, "staging_restore", mock.Anything).Return(nil)
	f.ctrl.On("Start", mock.Anything, "odoo-staging").Return(nil)

	result, err := f.svc.Copy(context.Background(), model.CopyRequest{
		SourceEnv: "prod", TargetEnv: "staging",
		TargetDatabaseName: "staging_restore",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "staging_restore", result.TargetDatabaseName)
}
