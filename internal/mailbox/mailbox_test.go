package mailbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rektlink/internal/domain"
	"rektlink/internal/mailbox"
	"rektlink/internal/store"
)

func newMailbox(t *testing.T) *mailbox.Mailbox {
	t.Helper()
	return mailbox.New(store.NewFileStore(t.TempDir()), store.SlotAuthSignature)
}

func TestTake_AtMostOnce(t *testing.T) {
	m := newMailbox(t)
	if err := m.Put("signature"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok, err := m.Take()
			if err != nil {
				t.Errorf("Take: %v", err)
				return
			}
			if ok {
				mu.Lock()
				delivered++
				mu.Unlock()
				if v != "signature" {
					t.Errorf("Take value = %q", v)
				}
			}
		}()
	}
	wg.Wait()

	if delivered != 1 {
		t.Fatalf("value delivered %d times, want 1", delivered)
	}
	if _, ok, _ := m.Take(); ok {
		t.Fatal("slot still occupied after delivery")
	}
}

func TestPut_ReplacesOccupant(t *testing.T) {
	m := newMailbox(t)
	if err := m.Put("old"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.Put("new"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := m.Take()
	if err != nil || !ok || v != "new" {
		t.Fatalf("Take: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestPoll_PicksUpLateValue(t *testing.T) {
	m := newMailbox(t)

	go func() {
		time.Sleep(30 * time.Millisecond)
		if err := m.Put("late"); err != nil {
			t.Errorf("Put: %v", err)
		}
	}()

	v, err := m.Poll(context.Background(), 20, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if v != "late" {
		t.Fatalf("Poll value = %q", v)
	}
}

func TestPoll_TimesOut(t *testing.T) {
	m := newMailbox(t)
	_, err := m.Poll(context.Background(), 3, 5*time.Millisecond)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("Poll error = %v, want ErrTimeout", err)
	}
}

func TestPoll_StopsOnCancel(t *testing.T) {
	m := newMailbox(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := m.Poll(ctx, 1000, 10*time.Millisecond)
		done <- err
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Poll error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Poll did not stop after cancel")
	}
}
