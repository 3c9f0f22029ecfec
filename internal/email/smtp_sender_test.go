package email

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSMTPServer acepta una conexion y responde un dialogo SMTP minimo.
type fakeSMTPServer struct {
	ln   net.Listener
	wg   sync.WaitGroup
	mu   sync.Mutex
	data string
	rcpt string
}

func startFakeSMTPServer(t *testing.T, hang bool) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeSMTPServer{ln: ln}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
		if hang {
			buf := make([]byte, 1)
			_, _ = conn.Read(buf)
			return
		}
		s.serve(conn)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		s.wg.Wait()
	})
	return s
}

func (s *fakeSMTPServer) serve(conn net.Conn) {
	r := bufio.NewReader(conn)
	write := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
	write("220 localhost ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			write("250-localhost")
			write("250 8BITMIME")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			write("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.mu.Lock()
			s.rcpt = strings.TrimSpace(line[len("RCPT TO:"):])
			s.mu.Unlock()
			write("250 OK")
		case cmd == "DATA":
			write("354 go ahead")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			s.mu.Lock()
			s.data = b.String()
			s.mu.Unlock()
			write("250 queued")
		case cmd == "QUIT":
			write("221 bye")
			return
		default:
			write("502 not implemented")
		}
	}
}

func (s *fakeSMTPServer) port(t *testing.T) int {
	t.Helper()
	_, p, _ := net.SplitHostPort(s.ln.Addr().String())
	n, err := strconv.Atoi(p)
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return n
}

func TestSMTPSender_Send(t *testing.T) {
	srv := startFakeSMTPServer(t, false)
	sender, err := NewSMTPSender("127.0.0.1", srv.port(t), "", "", "noreply@notes.io", "Notes", false)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sender.Send(ctx, "ana@x.io", "Verification Code", "Your OTP is 000123"); err != nil {
		t.Fatalf("send: %v", err)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.rcpt != "<ana@x.io>" {
		t.Fatalf("unexpected rcpt %q", srv.rcpt)
	}
	if !strings.Contains(srv.data, "Subject: Verification Code") || !strings.Contains(srv.data, "000123") {
		t.Fatalf("unexpected message data %q", srv.data)
	}
}

func TestSMTPSender_SendRespectsDeadline(t *testing.T) {
	srv := startFakeSMTPServer(t, true)
	sender, err := NewSMTPSender("127.0.0.1", srv.port(t), "", "", "noreply@notes.io", "", false)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := sender.Send(ctx, "ana@x.io", "Verification Code", "body"); err == nil {
		t.Fatalf("expected error from unresponsive server")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("send did not honour deadline, took %s", elapsed)
	}
}

func TestSMTPSender_RejectsHeaderInjection(t *testing.T) {
	sender, err := NewSMTPSender("127.0.0.1", 2525, "", "", "noreply@notes.io", "", false)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	if err := sender.Send(context.Background(), "ana@x.io\r\nBcc: evil@x.io", "s", "b"); err == nil {
		t.Fatalf("expected header injection to be rejected")
	}
	if err := sender.Send(context.Background(), "  ", "s", "b"); err == nil {
		t.Fatalf("expected empty recipient to be rejected")
	}
}

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender("", 25, "", "", "a@b.c", "", false); err == nil {
		t.Fatalf("expected missing host error")
	}
	if _, err := NewSMTPSender("smtp.local", 25, "", "", " ", "", false); err == nil {
		t.Fatalf("expected missing from error")
	}
	s, err := NewSMTPSender("smtp.local", 0, "", "", "a@b.c", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("noreply@notes.io", "Notes", "ana@x.io", "Verification Code", "hello")
	if !strings.HasPrefix(msg, "From: Notes <noreply@notes.io>\r\n") {
		t.Fatalf("unexpected from header: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nhello") {
		t.Fatalf("expected body after blank line: %q", msg)
	}

	plain := buildMessage("noreply@notes.io", "", "ana@x.io", "s", "b")
	if !strings.HasPrefix(plain, "From: noreply@notes.io\r\n") {
		t.Fatalf("unexpected plain from header: %q", plain)
	}
}

func TestDisabledSender(t *testing.T) {
	err := NewDisabledSender("smtp not configured").Send(context.Background(), "a@b.c", "s", "b")
	if err == nil || err.Error() != "smtp not configured" {
		t.Fatalf("expected configured reason, got %v", err)
	}
	if err := NewDisabledSender("").Send(context.Background(), "a@b.c", "s", "b"); err == nil {
		t.Fatalf("expected default error")
	}
}
