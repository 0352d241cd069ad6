package lock

import "testing"

func TestInstanceLock_SecondAcquireFails(t *testing.T) {
	dir := t.TempDir()

	a, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := a.TryLock()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected the first instance to acquire the lock")
	}
	defer a.Unlock()

	b, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	ok2, err := b.TryLock()
	if err != nil {
		t.Fatal(err)
	}
	if ok2 {
		t.Fatal("expected a second concurrent instance to fail to acquire the lock")
	}
}

func TestInstanceLock_ReacquireAfterUnlock(t *testing.T) {
	dir := t.TempDir()

	a, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := a.TryLock(); err != nil || !ok {
		t.Fatalf("expected first lock to succeed: ok=%v err=%v", ok, err)
	}
	if err := a.Unlock(); err != nil {
		t.Fatal(err)
	}

	b, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := b.TryLock()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected the lock to be acquirable again after Unlock")
	}
}
