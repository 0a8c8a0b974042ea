package snapshot

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/newtron-network/topocheck/pkg/util"
)

// TunnelConfig describes an SSH hop to a Redis server that only listens on
// the remote host's loopback.
type TunnelConfig struct {
	Host       string // host or host:port; port 22 when omitted
	User       string
	Password   string
	KnownHosts string // known_hosts file; empty disables host key checking
	Remote     string // address dialed from the SSH host; 127.0.0.1:6379 when empty
}

func (c TunnelConfig) sshAddr() string {
	if _, _, err := net.SplitHostPort(c.Host); err == nil {
		return c.Host
	}
	return net.JoinHostPort(strings.Trim(c.Host, "[]"), "22")
}

func (c TunnelConfig) remoteAddr() string {
	if c.Remote == "" {
		return "127.0.0.1:6379"
	}
	return c.Remote
}

func (c TunnelConfig) clientConfig() (*ssh.ClientConfig, error) {
	hostKey := ssh.InsecureIgnoreHostKey()
	if c.KnownHosts != "" {
		cb, err := knownhosts.New(c.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("reading known hosts %s: %w", c.KnownHosts, err)
		}
		hostKey = cb
	} else {
		util.WithField("host", c.Host).Warn("SSH host key checking disabled")
	}
	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            []ssh.AuthMethod{ssh.Password(c.Password)},
		HostKeyCallback: hostKey,
	}, nil
}

// SSHTunnel forwards a local TCP port to a remote address through an SSH
// connection.
type SSHTunnel struct {
	localAddr  string
	remoteAddr string
	sshClient  *ssh.Client
	listener   net.Listener
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewSSHTunnel dials the SSH host and opens a local listener on a random
// port. Connections to the local port are forwarded to cfg.Remote.
func NewSSHTunnel(cfg TunnelConfig) (*SSHTunnel, error) {
	config, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}

	sshClient, err := ssh.Dial("tcp", cfg.sshAddr(), config)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", cfg.Host, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &SSHTunnel{
		localAddr:  listener.Addr().String(),
		remoteAddr: cfg.remoteAddr(),
		sshClient:  sshClient,
		listener:   listener,
		done:       make(chan struct{}),
	}

	t.wg.Add(1)
	go t.acceptLoop()

	util.WithFields(map[string]interface{}{
		"host":   cfg.Host,
		"local":  t.localAddr,
		"remote": t.remoteAddr,
	}).Debug("SSH tunnel open")
	return t, nil
}

// LocalAddr returns the local address that forwards to the remote end.
func (t *SSHTunnel) LocalAddr() string {
	return t.localAddr
}

// Close stops the listener, closes the SSH connection and waits for the
// forwarding goroutines.
func (t *SSHTunnel) Close() error {
	close(t.done)
	t.listener.Close()
	t.wg.Wait()
	return t.sshClient.Close()
}

func (t *SSHTunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *SSHTunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.sshClient.Dial("tcp", t.remoteAddr)
	if err != nil {
		util.WithField("remote", t.remoteAddr).Debugf("tunnel dial: %v", err)
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	<-done
}
