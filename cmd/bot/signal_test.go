package main

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func raise(t *testing.T, sig os.Signal) {
	t.Helper()
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("Failed to find current process: %v", err)
	}
	if err := proc.Signal(sig); err != nil {
		t.Fatalf("Failed to send %v: %v", sig, err)
	}
}

func TestWaitForShutdown_ReturnsStoppingSignal(t *testing.T) {
	tests := []struct {
		name string
		send os.Signal
		want os.Signal
	}{
		{"sigint", syscall.SIGINT, syscall.SIGINT},
		{"sigterm", syscall.SIGTERM, syscall.SIGTERM},
		{"interrupt", os.Interrupt, os.Interrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(chan os.Signal, 1)
			go func() { got <- WaitForShutdown() }()

			// Give Notify time to install before the signal arrives.
			time.Sleep(50 * time.Millisecond)
			raise(t, tt.send)

			select {
			case sig := <-got:
				if sig != tt.want {
					t.Errorf("Expected %v, got %v", tt.want, sig)
				}
			case <-time.After(time.Second):
				t.Fatalf("WaitForShutdown did not return after %v", tt.send)
			}
		})
	}
}

func TestWaitForShutdown_BlocksWithoutSignal(t *testing.T) {
	got := make(chan os.Signal, 1)
	go func() { got <- WaitForShutdown() }()

	select {
	case sig := <-got:
		t.Fatalf("WaitForShutdown returned %v without a signal", sig)
	case <-time.After(200 * time.Millisecond):
		raise(t, syscall.SIGTERM)
		<-got
	}
}
