/*
Package session opens and drives command-execution sessions against
network devices over SSH. One session is one network connection; commands
are issued serially on top of it, each in its own channel. The caller owns
the lifecycle: NewSession, any number of Exec, then Finalize on every exit
path.
*/
package session

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/telenornms/skuld"
)

type Session struct {
	client *ssh.Client
	device skuld.Device
	closed sync.Once
}

// NewSession dials a device and completes the SSH handshake. Failures are
// classified: connect problems are unreachable, rejected credentials are
// auth, anything else in the handshake is protocol.
func NewSession(ctx context.Context, d skuld.Device, cred skuld.Credential) (*Session, error) {
	port := d.Port
	if port == 0 {
		port = skuld.Config.Port
	}
	addr := net.JoinHostPort(d.Addr, fmt.Sprintf("%d", port))
	cfg := &ssh.ClientConfig{
		User: cred.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(cred.Password),
			ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
				// Some devices only offer keyboard-interactive and
				// just want the password again.
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = cred.Password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         skuld.Config.ConnectTimeout,
	}

	nd := net.Dialer{Timeout: skuld.Config.ConnectTimeout}
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, skuld.Transport(skuld.Unreachable, "dial", err)
	}
	// The handshake has no context support, so lean on cfg.Timeout via a
	// connection deadline instead.
	_ = conn.SetDeadline(time.Now().Add(skuld.Config.ConnectTimeout))
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, skuld.Transport(classifyHandshake(err), "handshake", err)
	}
	_ = conn.SetDeadline(time.Time{})
	s := &Session{
		client: ssh.NewClient(c, chans, reqs),
		device: d,
	}
	skuld.Debugf("%s - session established to %s", d.Name, addr)
	return s, nil
}

func classifyHandshake(err error) skuld.TransportKind {
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "permission denied") {
		return skuld.AuthFailed
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return skuld.Unreachable
	}
	return skuld.ProtocolFailed
}

// Exec runs one command and captures its combined output. A timeout
// leaves the underlying connection usable for the next command; a
// transport-level failure marks the session broken and the caller must
// not reuse it.
func (s *Session) Exec(ctx context.Context, command string, timeout time.Duration) (skuld.RawResponse, error) {
	resp := skuld.RawResponse{
		Device:  s.device,
		Command: command,
		When:    time.Now(),
	}
	sess, err := s.client.NewSession()
	if err != nil {
		return resp, skuld.Transport(skuld.SessionBroken, "exec", err)
	}
	defer sess.Close()

	type execResult struct {
		out []byte
		err error
	}
	done := make(chan execResult, 1)
	go func() {
		out, err := sess.CombinedOutput(command)
		done <- execResult{out, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		resp.Elapsed = time.Since(resp.When)
		resp.Text = string(r.out)
		if r.err != nil {
			if _, exit := r.err.(*ssh.ExitError); exit {
				// Network CLIs exit non-zero for all sorts of benign
				// reasons; the output is still the response.
				return resp, nil
			}
			return resp, skuld.Transport(skuld.SessionBroken, "exec", r.err)
		}
		return resp, nil
	case <-timer.C:
		resp.Elapsed = time.Since(resp.When)
		return resp, skuld.Transport(skuld.CommandTimeout, "exec",
			fmt.Errorf("no response to %q within %s", command, timeout))
	case <-ctx.Done():
		resp.Elapsed = time.Since(resp.When)
		return resp, fmt.Errorf("%w: %s", skuld.ErrPassTimeout, command)
	}
}

// Finalize closes the connection. Idempotent, so it's safe to defer it
// and also call it on a broken session.
func (s *Session) Finalize() {
	s.closed.Do(func() {
		s.client.Close()
	})
}

// Dial adapts NewSession to the skuld.Dialer signature.
func Dial(ctx context.Context, d skuld.Device, cred skuld.Credential) (skuld.Execer, error) {
	return NewSession(ctx, d, cred)
}
