package htmlpdf

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

func hasChrome() bool {
	for _, name := range []string{
		"chromium-browser", "chromium", "google-chrome",
		"google-chrome-stable", "chrome",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func poolForTest(t *testing.T, size int) *browserPool {
	t.Helper()
	if !hasChrome() {
		t.Skip("skipping: Chrome/Chromium not found in PATH")
	}
	cfg := defaultConfig()
	cfg.poolSize = size
	cfg.noSandbox = true
	p, err := newBrowserPool(cfg)
	if err != nil {
		t.Fatalf("newBrowserPool: %v", err)
	}
	t.Cleanup(p.close)
	return p
}

func TestPool_BoundedCheckout(t *testing.T) {
	p := poolForTest(t, 1)

	_, release, err := p.acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	// The single slot is taken; a second checkout must block until the
	// context gives up.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, _, err := p.acquire(ctx); err != context.DeadlineExceeded {
		t.Fatalf("second acquire err = %v, want DeadlineExceeded", err)
	}

	release()

	// Slot returned; checkout works again.
	_, release2, err := p.acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestPool_ReleaseIdempotent(t *testing.T) {
	p := poolForTest(t, 1)

	_, release, err := p.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	release()
	release() // must not double-free the slot

	_, release2, err := p.acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire after double release: %v", err)
	}
	release2()
}

func TestPool_AcquireAfterClose(t *testing.T) {
	p := poolForTest(t, 1)
	p.close()

	if _, _, err := p.acquire(context.Background()); err != ErrClosed {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
