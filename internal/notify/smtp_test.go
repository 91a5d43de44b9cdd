package notify

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRelay speaks just enough SMTP over one end of a pipe to accept a
// single unauthenticated message.
type fakeRelay struct {
	commands []string
	data     string
	done     chan struct{}
}

func startRelay(t *testing.T, conn net.Conn) *fakeRelay {
	t.Helper()
	r := &fakeRelay{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		defer conn.Close()
		tc := textproto.NewConn(conn)
		if err := tc.PrintfLine("220 relay.test ESMTP"); err != nil {
			return
		}
		for {
			line, err := tc.ReadLine()
			if err != nil {
				return
			}
			r.commands = append(r.commands, line)
			switch verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); verb {
			case "EHLO", "HELO", "MAIL", "RCPT":
				_ = tc.PrintfLine("250 OK")
			case "DATA":
				_ = tc.PrintfLine("354 go ahead")
				raw, err := tc.ReadDotBytes()
				if err != nil {
					return
				}
				r.data = string(raw)
				_ = tc.PrintfLine("250 queued")
			case "QUIT":
				_ = tc.PrintfLine("221 bye")
				return
			default:
				_ = tc.PrintfLine("502 not implemented")
			}
		}
	}()
	return r
}

func pipeMailer(t *testing.T, username string) (*SMTPMailer, *fakeRelay) {
	t.Helper()
	m := NewSMTPMailer("relay.test", 587, username, "secret")
	client, server := net.Pipe()
	relay := startRelay(t, server)
	m.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		assert.Equal(t, "relay.test:587", addr)
		return client, nil
	}
	return m, relay
}

func TestSMTPMailer_Send(t *testing.T) {
	m, relay := pipeMailer(t, "")

	err := m.Send(context.Background(), Message{
		From:    "bot@example.com",
		To:      []string{"ops@example.com", "sales@example.com"},
		ReplyTo: "alice@example.com",
		Subject: "New Lead submission: Alice",
		Body:    "Name: Alice\nPhone: 1\n",
	})
	require.NoError(t, err)
	<-relay.done

	assert.Contains(t, relay.commands, "MAIL FROM:<bot@example.com>")
	assert.Contains(t, relay.commands, "RCPT TO:<ops@example.com>")
	assert.Contains(t, relay.commands, "RCPT TO:<sales@example.com>")
	assert.Equal(t, "QUIT", relay.commands[len(relay.commands)-1])

	assert.Contains(t, relay.data, "To: ops@example.com, sales@example.com\n")
	assert.Contains(t, relay.data, "Reply-To: alice@example.com\n")
	assert.Contains(t, relay.data, "Subject: New Lead submission: Alice\n")
	assert.True(t, strings.HasSuffix(relay.data, "\n\nName: Alice\nPhone: 1\n"))
}

func TestSMTPMailer_AuthRequiresServerSupport(t *testing.T) {
	m, relay := pipeMailer(t, "bot@example.com")
	require.NotNil(t, m.auth)

	err := m.Send(context.Background(), Message{From: "bot@example.com", To: []string{"ops@example.com"}})
	assert.ErrorContains(t, err, "does not support AUTH")
	<-relay.done
}

func TestSMTPMailer_DialError(t *testing.T) {
	m := NewSMTPMailer("relay.test", 587, "", "")
	boom := errors.New("connection refused")
	m.dial = func(context.Context, string, string) (net.Conn, error) { return nil, boom }

	err := m.Send(context.Background(), Message{From: "a@example.com", To: []string{"b@example.com"}})
	assert.ErrorIs(t, err, boom)
}

func TestSMTPMailer_ContextEndsStalledSession(t *testing.T) {
	m := NewSMTPMailer("relay.test", 587, "", "")
	client, server := net.Pipe()
	defer server.Close()
	m.dial = func(context.Context, string, string) (net.Conn, error) { return client, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Send(ctx, Message{}) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("send outlived its context")
	}
}

func TestBuildMIME_StripsHeaderBreaks(t *testing.T) {
	raw := string(buildMIME(Message{
		From:    "bot@example.com",
		To:      []string{"ops@example.com"},
		Subject: "New Lead submission: Eve\r\nBcc: victim@example.com",
	}, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	assert.NotContains(t, raw, "\r\nBcc:")
	assert.Contains(t, raw, "Date: Sat, 01 Mar 2025 00:00:00 +0000\r\n")
}
