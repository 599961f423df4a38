// Package sftpclient publishes generated files to a remote host over SFTP.
package sftpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type Config struct {
	Host                  string
	Port                  int
	User                  string
	Pass                  string
	RemoteDir             string
	KnownHosts            string
	InsecureIgnoreHostKey bool
}

var ErrMissingCredentials = errors.New("sftp: host, user and password are required")

func (c *Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if c.KnownHosts == "" {
		return nil, errors.New("sftp: known_hosts file required unless host key checking is disabled")
	}
	cb, err := knownhosts.New(c.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("sftp: known_hosts: %w", err)
	}
	return cb, nil
}

// Upload copies r to remoteName inside cfg.RemoteDir, creating the
// directory when needed.
func Upload(ctx context.Context, cfg Config, r io.Reader, remoteName string) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return ErrMissingCredentials
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	cb, err := cfg.hostKeyCallback()
	if err != nil {
		return err
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         20 * time.Second,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("sftp: dial error: %w", err)
	}
	// The handshake gets the context's deadline (or sshCfg.Timeout); after
	// that, cancelling ctx closes the connection under every remote call.
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(sshCfg.Timeout)
	}
	conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	fail := func(op string, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return fmt.Errorf("sftp: %s: %w", op, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return fail("handshake", err)
	}
	conn.SetDeadline(time.Time{})
	sshClient := ssh.NewClient(c, chans, reqs)
	defer sshClient.Close()

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		return fail("new client", err)
	}
	defer cli.Close()

	if err := cli.MkdirAll(cfg.RemoteDir); err != nil {
		return fail("mkdir "+cfg.RemoteDir, err)
	}
	remotePath := path.Join(cfg.RemoteDir, remoteName)
	dst, err := cli.Create(remotePath)
	if err != nil {
		return fail("create remote file", err)
	}
	n, err := io.Copy(dst, r)
	if err != nil {
		dst.Close()
		return fail("upload copy", err)
	}
	if err := dst.Close(); err != nil {
		return fail("close remote file", err)
	}
	log.Printf("INFO: [SFTP] Uploaded %d bytes to %s:%s", n, cfg.Host, remotePath)
	return nil
}
