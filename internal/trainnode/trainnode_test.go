package trainnode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"biblioteca-api/internal/recommend"
)

type fakeTrainer struct {
	mu   sync.Mutex
	gotK int
	err  error
}

func (f *fakeTrainer) k() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotK
}

func (f *fakeTrainer) Train(_ context.Context, k int) (*recommend.TrainResult, error) {
	f.mu.Lock()
	f.gotK = k
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.TrainResult{Version: "v1", TrainedUsers: 6, K: 3, Distribution: map[int]int{0: 2, 1: 2, 2: 2}}, nil
}

func startNode(t *testing.T, tr Trainer) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Serve(ctx, ln, "n1", tr)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

func TestSendTaskRoundTrip(t *testing.T) {
	tr := &fakeTrainer{}
	addr := startNode(t, tr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := SendTask(ctx, addr, &TrainTask{K: 3, RequestedBy: 1})
	if err != nil {
		t.Fatalf("SendTask: %v", err)
	}
	if got := tr.k(); got != 3 {
		t.Errorf("trainer got k=%d, want 3", got)
	}
	if resp.NodeID != "n1" || resp.Version != "v1" || resp.K != 3 || resp.Distribution[2] != 2 || resp.Error != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSendTaskInsufficientData(t *testing.T) {
	addr := startNode(t, &fakeTrainer{err: fmt.Errorf("%w: 1 usuarios activos", recommend.ErrInsufficientData)})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := SendTask(ctx, addr, &TrainTask{})
	if err != nil {
		t.Fatalf("SendTask: %v", err)
	}
	if resp.Code != CodeInsufficientData || resp.Error == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSendTaskUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := SendTask(ctx, addr, &TrainTask{}); err == nil {
		t.Fatal("expected dial error")
	}
}

// flakyListener falla los primeros Accept y anota cuándo.
type flakyListener struct {
	net.Listener
	mu    sync.Mutex
	fails int
	at    []time.Time
}

func (l *flakyListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	if l.fails > 0 {
		l.fails--
		l.at = append(l.at, time.Now())
		l.mu.Unlock()
		return nil, errors.New("accept: too many open files")
	}
	l.mu.Unlock()
	return l.Listener.Accept()
}

func (l *flakyListener) attempts() []time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]time.Time(nil), l.at...)
}

func newFlakyListener(t *testing.T, fails int) *flakyListener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return &flakyListener{Listener: ln, fails: fails}
}

func TestServeBacksOffOnAcceptErrors(t *testing.T) {
	ln := newFlakyListener(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, "n1", &fakeTrainer{}) }()
	defer func() {
		cancel()
		<-done
	}()

	sendCtx, cancelSend := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelSend()
	if _, err := SendTask(sendCtx, ln.Addr().String(), &TrainTask{K: 2}); err != nil {
		t.Fatalf("SendTask tras errores de accept: %v", err)
	}

	at := ln.attempts()
	if len(at) != 4 {
		t.Fatalf("accept errors = %d, want 4", len(at))
	}
	want := minAcceptDelay
	for i := 1; i < len(at); i++ {
		if gap := at[i].Sub(at[i-1]); gap < want {
			t.Errorf("espera %d = %s, want >= %s", i, gap, want)
		}
		want *= 2
	}
}

func TestServeStopsDuringBackoff(t *testing.T) {
	ln := newFlakyListener(t, 1_000_000)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, "n1", &fakeTrainer{}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve no terminó tras cancelar")
	}
	// 5+10+20+40ms: en 50ms no hay lugar para más de unos pocos intentos
	if n := len(ln.attempts()); n > 6 {
		t.Errorf("accept attempts = %d, want a lo sumo 6", n)
	}
}
