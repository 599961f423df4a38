package sftpclient

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()

	err := Upload(ctx, Config{}, strings.NewReader("pdf"), "resume.pdf")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	err = Upload(ctx, Config{Host: "h", User: "u", Pass: "p"}, strings.NewReader("pdf"), "resume.pdf")
	assert.ErrorContains(t, err, "known_hosts file required")

	err = Upload(ctx, Config{Host: "h", User: "u", Pass: "p", KnownHosts: "/does/not/exist"}, strings.NewReader("pdf"), "resume.pdf")
	assert.ErrorContains(t, err, "sftp: known_hosts")
}

func TestUploadDialFailure(t *testing.T) {
	// grab a free port and close it so nothing is listening
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := Config{Host: "127.0.0.1", Port: port, User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	err = Upload(context.Background(), cfg, strings.NewReader("pdf"), "resume.pdf")
	assert.ErrorContains(t, err, "sftp: dial error")
}

func TestUploadHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	cfg := Config{Host: "192.0.2.1", User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	err := Upload(ctx, cfg, strings.NewReader("pdf"), "resume.pdf")
	assert.ErrorContains(t, err, "sftp: dial error")
}

// silentServer accepts connections and never speaks.
func silentServer(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	t.Cleanup(func() {
		l.Close()
		<-done
		for _, c := range conns {
			c.Close()
		}
	})
	return l.Addr().(*net.TCPAddr).Port
}

func TestUploadHandshakeStopsAtDeadline(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: silentServer(t), User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Upload(ctx, cfg, strings.NewReader("pdf"), "resume.pdf")
	assert.ErrorContains(t, err, "sftp: handshake")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestUploadHandshakeStopsOnCancel(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: silentServer(t), User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	err := Upload(ctx, cfg, strings.NewReader("pdf"), "resume.pdf")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}
