package mail

import (
	"context"
	"encoding/base64"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP is a minimal plaintext ESMTP server with AUTH PLAIN.
type fakeSMTP struct {
	ln   net.Listener
	user string
	pass string

	mu       sync.Mutex
	rejectTo bool
	commands []string
	messages []string

	conns  sync.WaitGroup
	served chan struct{}
}

func newFakeSMTP(t *testing.T, user, pass string) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeSMTP{ln: ln, user: user, pass: pass, served: make(chan struct{})}
	go f.serve()
	t.Cleanup(func() {
		_ = ln.Close()
		<-f.served
		f.conns.Wait()
	})
	return f
}

func (f *fakeSMTP) port() int { return f.ln.Addr().(*net.TCPAddr).Port }

func (f *fakeSMTP) serve() {
	defer close(f.served)
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		f.conns.Add(1)
		go func() {
			defer f.conns.Done()
			f.handle(conn)
		}()
	}
}

func (f *fakeSMTP) handle(conn net.Conn) {
	tp := textproto.NewConn(conn)
	defer tp.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	_ = tp.PrintfLine("220 localhost ESMTP fake")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.commands = append(f.commands, line)
		f.mu.Unlock()

		verb, arg, _ := strings.Cut(line, " ")
		switch strings.ToUpper(verb) {
		case "EHLO":
			_ = tp.PrintfLine("250-localhost")
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			_, resp, _ := strings.Cut(arg, " ")
			decoded, _ := base64.StdEncoding.DecodeString(resp)
			if string(decoded) == "\x00"+f.user+"\x00"+f.pass {
				_ = tp.PrintfLine("235 2.7.0 Authentication successful")
			} else {
				_ = tp.PrintfLine("535 5.7.8 Authentication failed")
			}
		case "MAIL", "NOOP", "RSET":
			_ = tp.PrintfLine("250 OK")
		case "RCPT":
			f.mu.Lock()
			reject := f.rejectTo
			f.mu.Unlock()
			if reject {
				_ = tp.PrintfLine("550 5.1.1 No such user")
			} else {
				_ = tp.PrintfLine("250 OK")
			}
		case "DATA":
			_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
			lines, err := tp.ReadDotLines()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.messages = append(f.messages, strings.Join(lines, "\n"))
			f.mu.Unlock()
			_ = tp.PrintfLine("250 OK queued")
		case "QUIT":
			_ = tp.PrintfLine("221 Bye")
			return
		default:
			_ = tp.PrintfLine("502 Command not implemented")
		}
	}
}

func (f *fakeSMTP) snapshot() (commands, messages []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...), append([]string(nil), f.messages...)
}

func (f *fakeSMTP) transport(user, pass string) *SMTPTransport {
	return &SMTPTransport{
		Host:     "127.0.0.1",
		Port:     f.port(),
		Username: user,
		Password: pass,
		Timeout:  5 * time.Second,
	}
}

func TestSMTPTransportSend(t *testing.T) {
	t.Parallel()

	srv := newFakeSMTP(t, "site@example.com", "secret")
	tr := srv.transport("site@example.com", "secret")
	ctx := context.Background()

	require.NoError(t, tr.Verify(ctx))

	msg, err := Compose(sampleContact(), "site@example.com", "me@example.com", "", time.Now())
	require.NoError(t, err)
	receipt, err := tr.Send(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, receipt.MessageID)
	assert.Empty(t, receipt.PreviewURL)

	commands, messages := srv.snapshot()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Subject: New message from Ada: Hello")
	assert.Contains(t, messages[0], "Reply-To: ada@example.com")
	assert.Contains(t, commands, "MAIL FROM:<site@example.com>")
	assert.Contains(t, commands, "RCPT TO:<me@example.com>")
	assert.Contains(t, commands, "NOOP")
}

func TestSMTPTransportBadCredentials(t *testing.T) {
	t.Parallel()

	srv := newFakeSMTP(t, "site@example.com", "secret")
	tr := srv.transport("site@example.com", "wrong")

	err := tr.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp auth")
}

func TestSMTPTransportRejectedRecipient(t *testing.T) {
	t.Parallel()

	srv := newFakeSMTP(t, "site@example.com", "secret")
	srv.mu.Lock()
	srv.rejectTo = true
	srv.mu.Unlock()
	tr := srv.transport("site@example.com", "secret")

	msg, err := Compose(sampleContact(), "site@example.com", "nobody@example.com", "", time.Now())
	require.NoError(t, err)
	_, err = tr.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RCPT")

	_, messages := srv.snapshot()
	assert.Empty(t, messages)
}

func TestSMTPTransportNotConfigured(t *testing.T) {
	t.Parallel()

	tr := &SMTPTransport{}
	require.ErrorIs(t, tr.Verify(context.Background()), ErrNotConfigured)
}

func TestSMTPTransportCancelledContext(t *testing.T) {
	t.Parallel()

	srv := newFakeSMTP(t, "u", "p")
	tr := srv.transport("u", "p")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, tr.Verify(ctx))
}
