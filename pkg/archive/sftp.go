// pkg/archive/sftp.go
package archive

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

/*
SFTPSink uploads report files into a directory on an SFTP server.

Fields:
  - Host:           SFTP server hostname.
  - Port:           SFTP port (usually 22).
  - Username:       SFTP username.
  - PrivateKeyPath: Path to the SSH private key.
  - KnownHostsPath: Optional known_hosts file; host keys are not checked when empty.
  - RemoteDir:      Directory on the server (e.g. "upload"). A leading "/" is
    stripped so the path stays relative to the SFTP home directory.
  - Timeout:        SSH handshake timeout (defaults to 10s).
*/
type SFTPSink struct {
	Host           string
	Port           int
	Username       string
	PrivateKeyPath string
	KnownHostsPath string
	RemoteDir      string
	Timeout        time.Duration
}

func (s *SFTPSink) Name() string {
	return "sftp://" + net.JoinHostPort(s.Host, strconv.Itoa(s.Port)) + "/" + strings.TrimPrefix(s.RemoteDir, "/")
}

func (s *SFTPSink) clientConfig() (*ssh.ClientConfig, error) {
	key, err := os.ReadFile(s.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if s.KnownHostsPath != "" {
		hostKeyCallback, err = knownhosts.New(s.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
	}

	timeout := s.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &ssh.ClientConfig{
		User:            s.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

/*
Upload writes data as fileName inside RemoteDir, creating the directory
if it does not exist.
*/
func (s *SFTPSink) Upload(ctx context.Context, fileName string, data []byte) error {
	sshCfg, err := s.clientConfig()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	d := net.Dialer{Timeout: sshCfg.Timeout}
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("ssh dial: %w", err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(raw, addr, sshCfg)
	if err != nil {
		raw.Close()
		return fmt.Errorf("ssh handshake: %w", err)
	}
	conn := ssh.NewClient(sshConn, chans, reqs)
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return fmt.Errorf("sftp client: %w", err)
	}
	defer client.Close()

	remoteDir := strings.TrimPrefix(s.RemoteDir, "/")
	if remoteDir != "" {
		if err := client.MkdirAll(remoteDir); err != nil {
			return fmt.Errorf("create remote dir %s: %w", remoteDir, err)
		}
	}
	remotePath := path.Join(remoteDir, fileName)

	f, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write remote file %s: %w", remotePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close remote file %s: %w", remotePath, err)
	}

	return nil
}
