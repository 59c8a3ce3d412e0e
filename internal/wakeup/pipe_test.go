package wakeup

import "testing"

func TestDrainReturnsQueuedFDs(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if err := p.WriteWakeFD(7); err != nil {
		t.Fatalf("WriteWakeFD: %v", err)
	}
	if err := p.WriteWakeFD(9); err != nil {
		t.Fatalf("WriteWakeFD: %v", err)
	}

	fds, quit, err := p.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if quit {
		t.Fatal("quit=true, did not write a quit token")
	}
	if len(fds) != 2 || fds[0] != 7 || fds[1] != 9 {
		t.Fatalf("Drain returned %v, want [7 9]", fds)
	}
}

func TestDrainReportsQuit(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if err := p.WriteWakeFD(3); err != nil {
		t.Fatalf("WriteWakeFD: %v", err)
	}
	if err := p.WriteQuit(); err != nil {
		t.Fatalf("WriteQuit: %v", err)
	}

	fds, quit, err := p.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !quit {
		t.Fatal("quit=false, expected true after WriteQuit")
	}
	if len(fds) != 1 || fds[0] != 3 {
		t.Fatalf("Drain returned %v, want [3]", fds)
	}
}

func TestDrainOnEmptyPipeReturnsNoError(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	fds, quit, err := p.Drain()
	if err != nil {
		t.Fatalf("Drain on empty pipe: %v", err)
	}
	if quit || len(fds) != 0 {
		t.Fatalf("Drain on empty pipe = %v, %v; want nil, false", fds, quit)
	}
}
