package storage

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

// RsyncBackend uploads artifacts over SSH using rsync. Connectivity
// checks use the SSH library directly; transfers shell out to rsync so
// partial transfers resume cheaply.
type RsyncBackend struct {
	settings model.RsyncSettings
	logger   zerolog.Logger
}

func NewRsyncBackend(settings model.RsyncSettings, logger zerolog.Logger) (*RsyncBackend, error) {
	if settings.Host == "" || settings.Username == "" || settings.RemotePath == "" {
		return nil, &errdefs.ConfigurationError{Backend: model.StorageBackendRsync, Msg: "host, username and remote path are required"}
	}
	if settings.SSHKeyPath == "" {
		return nil, &errdefs.ConfigurationError{Backend: model.StorageBackendRsync, Msg: "ssh key path is required"}
	}
	return &RsyncBackend{
		settings: settings,
		logger:   logger.With().Str("component", "storage-rsync").Logger(),
	}, nil
}

func (b *RsyncBackend) Name() string { return model.StorageBackendRsync }

func (b *RsyncBackend) dial() (*ssh.Client, error) {
	keyBytes, err := os.ReadFile(b.settings.SSHKeyPath)
	if err != nil {
		return nil, &errdefs.ConfigurationError{Backend: b.Name(), Msg: fmt.Sprintf("read ssh key: %v", err)}
	}
	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, &errdefs.ConfigurationError{Backend: b.Name(), Msg: fmt.Sprintf("parse ssh key: %v", err)}
	}

	cfg := &ssh.ClientConfig{
		User:            b.settings.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(b.settings.Host, "22")
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, &errdefs.ConfigurationError{Backend: b.Name(), Msg: fmt.Sprintf("connect to %s: %v", addr, err)}
	}
	return client, nil
}

func (b *RsyncBackend) TestConnection(_ context.Context) error {
	client, err := b.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return &errdefs.ConfigurationError{Backend: b.Name(), Msg: fmt.Sprintf("open session: %v", err)}
	}
	defer session.Close()

	if out, err := session.CombinedOutput("ls " + quoteArg(b.settings.RemotePath)); err != nil {
		return &errdefs.ConfigurationError{
			Backend: b.Name(),
			Msg:     fmt.Sprintf("remote path %s not accessible: %s", b.settings.RemotePath, strings.TrimSpace(string(out))),
		}
	}
	return nil
}

func (b *RsyncBackend) Upload(ctx context.Context, localPath, remotePath string) error {
	if _, err := os.Stat(localPath); err != nil {
		return &errdefs.UploadError{Backend: b.Name(), Err: err}
	}

	remoteDir := path.Join(b.settings.RemotePath, path.Dir(remotePath))
	if err := b.ensureRemoteDir(remoteDir); err != nil {
		return err
	}

	dest := fmt.Sprintf("%s@%s:%s/", b.settings.Username, b.settings.Host, remoteDir)
	sshCmd := fmt.Sprintf("ssh -i %s -o StrictHostKeyChecking=no -o BatchMode=yes", quoteArg(b.settings.SSHKeyPath))

	b.logger.Info().Str("src", localPath).Str("dest", dest).Msg("uploading via rsync")
	cmd := exec.CommandContext(ctx, "rsync", "-az", "-e", sshCmd, localPath, dest)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &errdefs.UploadError{
			Backend: b.Name(),
			Err:     fmt.Errorf("rsync: %s", strings.TrimSpace(string(out))),
		}
	}
	return nil
}

func (b *RsyncBackend) ensureRemoteDir(dir string) error {
	client, err := b.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return &errdefs.UploadError{Backend: b.Name(), Err: err}
	}
	defer session.Close()

	if out, err := session.CombinedOutput("mkdir -p " + quoteArg(dir)); err != nil {
		return &errdefs.UploadError{
			Backend: b.Name(),
			Err:     fmt.Errorf("mkdir %s: %s", dir, strings.TrimSpace(string(out))),
		}
	}
	return nil
}

func quoteArg(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
