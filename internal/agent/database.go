package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

// validIdentRe matches PostgreSQL identifiers we are willing to pass to
// the CLI: leading letter or underscore, then letters/digits/underscores,
// at most 63 characters. Prevents injection through database names.
var validIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidIdentifier reports whether name is a safe database identifier.
func ValidIdentifier(name string) bool {
	return validIdentRe.MatchString(name)
}

// DatabaseManager drives PostgreSQL through the psql/pg_dump CLIs using
// per-environment credentials discovered from docker-compose.
type DatabaseManager struct {
	logger zerolog.Logger
}

// NewDatabaseManager creates a new DatabaseManager.
func NewDatabaseManager(logger zerolog.Logger) *DatabaseManager {
	return &DatabaseManager{
		logger: logger.With().Str("component", "database-manager").Logger(),
	}
}

// psqlArgs returns the base psql CLI arguments for the credentials.
func psqlArgs(creds model.DBCredentials) []string {
	return []string{"-h", creds.Host, "-p", creds.Port, "-U", creds.User}
}

// pgEnv returns the process environment with PGPASSWORD set.
func pgEnv(creds model.DBCredentials) []string {
	return append(os.Environ(), "PGPASSWORD="+creds.Password)
}

// execErr classifies a failed CLI invocation: context expiry becomes a
// timeout ExecutionError, everything else carries the combined output.
func execErr(ctx context.Context, op string, output []byte, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &errdefs.ExecutionError{Op: op, Timeout: true, Err: err}
	}
	return &errdefs.ExecutionError{Op: op, Detail: strings.TrimSpace(string(output)), Err: err}
}

// query runs a single SQL statement via psql against dbname and returns
// the unaligned tuple output.
func (m *DatabaseManager) query(ctx context.Context, creds model.DBCredentials, dbname, sql string) (string, error) {
	args := append(psqlArgs(creds), "-d", dbname, "-t", "-A", "-c", sql)
	cmd := exec.CommandContext(ctx, "psql", args...)
	cmd.Env = pgEnv(creds)
	m.logger.Debug().Str("sql", sql).Msg("executing psql query")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", execErr(ctx, "psql", output, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// execSQL runs a statement against the maintenance database.
func (m *DatabaseManager) execSQL(ctx context.Context, creds model.DBCredentials, sql string) error {
	args := append(psqlArgs(creds), "-d", "postgres", "-c", sql)
	cmd := exec.CommandContext(ctx, "psql", args...)
	cmd.Env = pgEnv(creds)
	m.logger.Debug().Str("sql", sql).Msg("executing psql statement")

	if output, err := cmd.CombinedOutput(); err != nil {
		return execErr(ctx, "psql", output, err)
	}
	return nil
}

// ListDatabases returns the databases owned by the credential user,
// excluding templates and the maintenance database.
func (m *DatabaseManager) ListDatabases(ctx context.Context, creds model.DBCredentials) ([]string, error) {
	sql := fmt.Sprintf(
		`SELECT datname FROM pg_database
		 WHERE datdba = (SELECT usesysid FROM pg_user WHERE usename = '%s')
		 AND datname NOT IN ('postgres', 'template0', 'template1')`, creds.User)

	out, err := m.query(ctx, creds, "postgres", sql)
	if err != nil {
		return nil, err
	}

	var dbs []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			dbs = append(dbs, name)
		}
	}
	return dbs, nil
}

// PrimaryDatabase resolves the primary (or only) database for an
// environment. With multiple candidates it prefers one whose name
// contains the environment name.
func (m *DatabaseManager) PrimaryDatabase(ctx context.Context, creds model.DBCredentials, env string) (string, error) {
	dbs, err := m.ListDatabases(ctx, creds)
	if err != nil {
		return "", err
	}
	if len(dbs) == 0 {
		return "", errdefs.Validationf("no database found for environment %s", env)
	}
	if len(dbs) > 1 {
		for _, db := range dbs {
			if strings.Contains(strings.ToLower(db), env) {
				return db, nil
			}
		}
	}
	return dbs[0], nil
}

// Exists reports whether the named database exists.
func (m *DatabaseManager) Exists(ctx context.Context, creds model.DBCredentials, name string) (bool, error) {
	if !ValidIdentifier(name) {
		return false, errdefs.Validationf("invalid database name %q", name)
	}
	out, err := m.query(ctx, creds, "postgres",
		fmt.Sprintf("SELECT 1 FROM pg_database WHERE datname = '%s'", name))
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Dump runs pg_dump and compresses the output to a gzipped file.
func (m *DatabaseManager) Dump(ctx context.Context, creds model.DBCredentials, name, dumpPath string) error {
	if !ValidIdentifier(name) {
		return errdefs.Validationf("invalid database name %q", name)
	}

	m.logger.Info().Str("database", name).Str("path", dumpPath).Msg("dumping database")

	if err := os.MkdirAll(filepath.Dir(dumpPath), 0750); err != nil {
		return fmt.Errorf("create dump directory: %w", err)
	}

	dumpArgs := append(psqlArgs(creds), "-d", name)
	shell := fmt.Sprintf("pg_dump %s | gzip > %s", strings.Join(quoteArgs(dumpArgs), " "), quoteArg(dumpPath))
	cmd := exec.CommandContext(ctx, "bash", "-o", "pipefail", "-c", shell)
	cmd.Env = pgEnv(creds)
	m.logger.Debug().Str("shell", shell).Msg("executing pg_dump")

	if output, err := cmd.CombinedOutput(); err != nil {
		// Remove the partial dump so a failed run leaves nothing behind.
		_ = os.Remove(dumpPath)
		return execErr(ctx, "pg_dump", output, err)
	}
	return nil
}

// Restore imports a gzipped SQL dump into the named database.
func (m *DatabaseManager) Restore(ctx context.Context, creds model.DBCredentials, name, dumpPath string) error {
	if !ValidIdentifier(name) {
		return errdefs.Validationf("invalid database name %q", name)
	}

	m.logger.Info().Str("database", name).Str("path", dumpPath).Msg("restoring database")

	restoreArgs := append(psqlArgs(creds), "-d", name)
	shell := fmt.Sprintf("gunzip -c %s | psql %s", quoteArg(dumpPath), strings.Join(quoteArgs(restoreArgs), " "))
	cmd := exec.CommandContext(ctx, "bash", "-o", "pipefail", "-c", shell)
	cmd.Env = pgEnv(creds)
	m.logger.Debug().Str("shell", shell).Msg("executing psql restore")

	if output, err := cmd.CombinedOutput(); err != nil {
		return execErr(ctx, "psql restore", output, err)
	}
	return nil
}

// Create creates a fresh database.
func (m *DatabaseManager) Create(ctx context.Context, creds model.DBCredentials, name string) error {
	if !ValidIdentifier(name) {
		return errdefs.Validationf("invalid database name %q", name)
	}
	m.logger.Info().Str("database", name).Msg("creating database")
	return m.execSQL(ctx, creds, fmt.Sprintf(`CREATE DATABASE "%s"`, name))
}

// Drop drops the database if it exists.
func (m *DatabaseManager) Drop(ctx context.Context, creds model.DBCredentials, name string) error {
	if !ValidIdentifier(name) {
		return errdefs.Validationf("invalid database name %q", name)
	}
	m.logger.Info().Str("database", name).Msg("dropping database")
	return m.execSQL(ctx, creds, fmt.Sprintf(`DROP DATABASE IF EXISTS "%s"`, name))
}

// TerminateConnections kills every session on the named database so a
// drop cannot block on open connections.
func (m *DatabaseManager) TerminateConnections(ctx context.Context, creds model.DBCredentials, name string) error {
	if !ValidIdentifier(name) {
		return errdefs.Validationf("invalid database name %q", name)
	}
	sql := fmt.Sprintf(
		`SELECT pg_terminate_backend(pid) FROM pg_stat_activity
		 WHERE datname = '%s' AND pid <> pg_backend_pid()`, name)
	return m.execSQL(ctx, creds, sql)
}

// Info returns size and table count for the named database.
func (m *DatabaseManager) Info(ctx context.Context, creds model.DBCredentials, name string) (*model.DatabaseInfo, error) {
	if !ValidIdentifier(name) {
		return nil, errdefs.Validationf("invalid database name %q", name)
	}

	info := &model.DatabaseInfo{Name: name, Available: true}

	size, err := m.query(ctx, creds, name,
		fmt.Sprintf("SELECT pg_size_pretty(pg_database_size('%s'))", name))
	if err != nil {
		return nil, err
	}
	info.Size = size

	count, err := m.query(ctx, creds, name,
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public'")
	if err != nil {
		return nil, err
	}
	if n, convErr := strconv.Atoi(count); convErr == nil {
		info.TableCount = n
	}

	return info, nil
}

// quoteArgs wraps each argument in single quotes for safe shell usage.
func quoteArgs(args []string) []string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return quoted
}

func quoteArg(a string) string {
	return "'" + strings.ReplaceAll(a, "'", "'\\''") + "'"
}

// IsTimeout reports whether err is an execution timeout.
func IsTimeout(err error) bool {
	var ee *errdefs.ExecutionError
	return errors.As(err, &ee) && ee.Timeout
}
