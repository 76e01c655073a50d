package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// openTestClient connects to REDIS_TEST_ADDR. Tests use random account keys
// so they never collide with each other or with real data.
func openTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := strings.TrimSpace(os.Getenv("REDIS_TEST_ADDR"))
	if addr == "" {
		t.Skip("integration test skipped: REDIS_TEST_ADDR is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Connect(ctx, Config{Addr: addr, Timeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLoginThrottle_LocksAfterMaxFailures_Integration(t *testing.T) {
	client := openTestClient(t)
	th := NewLoginThrottle(client, 3, time.Minute)
	ctx := context.Background()
	account := uuid.NewString() + "@example.com"
	t.Cleanup(func() { _ = client.Del(context.Background(), th.key(account)).Err() })

	for i := 0; i < 3; i++ {
		ok, err := th.Allow(ctx, account)
		if err != nil {
			t.Fatalf("allow #%d: %v", i, err)
		}
		if !ok {
			t.Fatalf("locked out after only %d failures", i)
		}
		if err := th.RecordFailure(ctx, account); err != nil {
			t.Fatalf("record #%d: %v", i, err)
		}
	}

	ok, err := th.Allow(ctx, account)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("expected lockout after 3 failures")
	}

	n, err := client.Get(ctx, th.key(account)).Int64()
	if err != nil || n != 3 {
		t.Fatalf("expected counter 3, got %d (%v)", n, err)
	}

	// Other accounts are unaffected.
	if ok, err := th.Allow(ctx, uuid.NewString()+"@example.com"); err != nil || !ok {
		t.Fatalf("unrelated account locked: ok=%v err=%v", ok, err)
	}

	if err := th.Reset(ctx, account); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, err := th.Allow(ctx, account); err != nil || !ok {
		t.Fatalf("expected access after reset: ok=%v err=%v", ok, err)
	}
	if exists, _ := client.Exists(ctx, th.key(account)).Result(); exists != 0 {
		t.Fatal("counter key survived reset")
	}
}

func TestLoginThrottle_WindowStartsAtFirstFailure_Integration(t *testing.T) {
	client := openTestClient(t)
	th := NewLoginThrottle(client, 5, time.Minute)
	ctx := context.Background()
	account := uuid.NewString() + "@example.com"
	t.Cleanup(func() { _ = client.Del(context.Background(), th.key(account)).Err() })

	if err := th.RecordFailure(ctx, account); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := client.Expire(ctx, th.key(account), 10*time.Second).Err(); err != nil {
		t.Fatalf("shorten ttl: %v", err)
	}

	if err := th.RecordFailure(ctx, account); err != nil {
		t.Fatalf("record: %v", err)
	}
	ttl, err := client.TTL(ctx, th.key(account)).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > 10*time.Second {
		t.Fatalf("later failure extended the window: ttl=%s", ttl)
	}
}

func TestLoginThrottle_LockoutExpires_Integration(t *testing.T) {
	client := openTestClient(t)
	th := NewLoginThrottle(client, 1, time.Second)
	ctx := context.Background()
	account := uuid.NewString() + "@example.com"
	t.Cleanup(func() { _ = client.Del(context.Background(), th.key(account)).Err() })

	if err := th.RecordFailure(ctx, account); err != nil {
		t.Fatalf("record: %v", err)
	}
	if ok, err := th.Allow(ctx, account); err != nil || ok {
		t.Fatalf("expected lockout: ok=%v err=%v", ok, err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		ok, err := th.Allow(ctx, account)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("lockout did not expire")
		}
		time.Sleep(200 * time.Millisecond)
	}
}
