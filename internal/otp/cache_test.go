package otp

import (
	"testing"
	"time"
)

func TestCacheConsume(t *testing.T) {
	c := NewCache(DefaultTTL)

	code, err := c.Put(PendingSignup{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code %q is not six digits", code)
	}

	// A wrong code leaves the entry in place.
	if _, found, matched := c.Consume("alice@example.com", "000000"); !found || matched {
		t.Errorf("wrong code: found=%v matched=%v, want found and not matched", found, matched)
	}

	signup, found, matched := c.Consume("alice@example.com", code)
	if !found || !matched {
		t.Fatalf("correct code: found=%v matched=%v, want both true", found, matched)
	}
	if signup.Name != "Alice" || signup.PasswordHash != "hash" {
		t.Errorf("unexpected signup returned: %+v", signup)
	}

	// The entry is consumed; a replay fails.
	if _, found, _ := c.Consume("alice@example.com", code); found {
		t.Error("replay succeeded, entry should be gone after consumption")
	}
}

func TestCacheUnknownEmail(t *testing.T) {
	c := NewCache(DefaultTTL)
	if _, found, _ := c.Consume("nobody@example.com", "123456"); found {
		t.Error("unknown email reported as found")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10 * time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	code, err := c.Put(PendingSignup{Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	c.now = func() time.Time { return base.Add(10*time.Minute + time.Second) }
	if _, found, _ := c.Consume("bob@example.com", code); found {
		t.Error("expired entry reported as found")
	}
}

func TestCacheReplacesPrevious(t *testing.T) {
	c := NewCache(DefaultTTL)

	old, _ := c.Put(PendingSignup{Email: "alice@example.com"})
	fresh, _ := c.Put(PendingSignup{Email: "alice@example.com"})

	if old != fresh {
		if _, _, matched := c.Consume("alice@example.com", old); matched {
			t.Error("stale code still accepted after replacement")
		}
	}
	if _, found, matched := c.Consume("alice@example.com", fresh); !found || !matched {
		t.Error("fresh code rejected")
	}
}

func TestPurgeExpired(t *testing.T) {
	c := NewCache(10 * time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put(PendingSignup{Email: "old@example.com"})

	c.now = func() time.Time { return base.Add(9 * time.Minute) }
	c.Put(PendingSignup{Email: "fresh@example.com"})

	c.now = func() time.Time { return base.Add(11 * time.Minute) }
	if removed := c.PurgeExpired(); removed != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", removed)
	}
	if _, found, _ := c.Consume("fresh@example.com", "wrong"); !found {
		t.Error("live entry was purged")
	}
}
