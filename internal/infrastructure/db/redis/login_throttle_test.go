package redis

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewLoginThrottle_Defaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	th := NewLoginThrottle(client, 0, 0)
	if th.maxFailures != defaultMaxFailures {
		t.Fatalf("expected %d, got %d", defaultMaxFailures, th.maxFailures)
	}
	if th.window != defaultLockout {
		t.Fatalf("expected %s, got %s", defaultLockout, th.window)
	}

	th = NewLoginThrottle(client, 3, time.Minute)
	if th.maxFailures != 3 || th.window != time.Minute {
		t.Fatalf("explicit settings ignored: %+v", th)
	}
}

func TestLoginThrottle_Key(t *testing.T) {
	th := &LoginThrottle{}
	if got := th.key("alice@example.com"); got != "login_failures:alice@example.com" {
		t.Fatalf("unexpected key %q", got)
	}
}
