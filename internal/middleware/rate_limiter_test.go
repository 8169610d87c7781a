package middleware

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_UserLimit(t *testing.T) {
	rl := NewRateLimiter(3, 100, time.Minute)
	defer rl.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.AllowUser(ctx, 1); !ok {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
	}
	if ok, _ := rl.AllowUser(ctx, 1); ok {
		t.Error("fourth request allowed, want rejected")
	}
	if ok, _ := rl.AllowUser(ctx, 2); !ok {
		t.Error("other user rejected, want allowed")
	}
}

func TestRateLimiter_IPLimit(t *testing.T) {
	rl := NewRateLimiter(100, 2, time.Minute)
	defer rl.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := rl.AllowIP(ctx, "10.0.0.1"); !ok {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
	}
	if ok, _ := rl.AllowIP(ctx, "10.0.0.1"); ok {
		t.Error("third request allowed, want rejected")
	}

	rl.Reset()
	if ok, _ := rl.AllowIP(ctx, "10.0.0.1"); !ok {
		t.Error("request after Reset rejected, want allowed")
	}
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rl := NewRateLimiter(1, 1, 20*time.Millisecond)
	defer rl.Close()
	ctx := context.Background()

	if ok, _ := rl.AllowUser(ctx, 7); !ok {
		t.Fatal("first request rejected")
	}
	if ok, _ := rl.AllowUser(ctx, 7); ok {
		t.Fatal("second request allowed inside the window")
	}

	time.Sleep(40 * time.Millisecond)
	if ok, _ := rl.AllowUser(ctx, 7); !ok {
		t.Error("request after the window rejected")
	}
}

func TestRateLimiter_CloseTwice(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	if err := rl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := rl.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
