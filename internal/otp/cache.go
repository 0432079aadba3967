// Package otp holds pending signups between the signup request and the
// email verification step. Entries live in process memory only; a restart
// discards them and the user simply signs up again.
package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"sync"
	"time"
)

// DefaultTTL is how long a verification code stays valid.
const DefaultTTL = 10 * time.Minute

// PendingSignup is the signup payload held until the email is verified.
type PendingSignup struct {
	Name         string
	Email        string
	PasswordHash string
}

type entry struct {
	code      string
	signup    PendingSignup
	expiresAt time.Time
}

// Cache is a TTL-bounded store of pending signups keyed by email.
// All operations on a single key are atomic.
type Cache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	entries map[string]entry
}

// NewCache creates a Cache with the given TTL. A non-positive ttl falls
// back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Put stores a pending signup under its email, replacing any previous
// entry for the same address, and returns the generated six-digit code.
func (c *Cache) Put(signup PendingSignup) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[signup.Email] = entry{
		code:      code,
		signup:    signup,
		expiresAt: c.now().Add(c.ttl),
	}
	return code, nil
}

// Consume atomically checks the code for an email and, on match, removes
// the entry and returns the pending signup. The second return reports
// whether a live entry existed at all; the third whether the code matched.
// A wrong code leaves the entry in place for another attempt.
func (c *Cache) Consume(email, code string) (PendingSignup, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[email]
	if !ok || c.now().After(e.expiresAt) {
		delete(c.entries, email)
		return PendingSignup{}, false, false
	}
	if e.code != code {
		return PendingSignup{}, true, false
	}
	delete(c.entries, email)
	return e.signup, true, true
}

// PurgeExpired drops all expired entries and returns how many were removed.
func (c *Cache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for email, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, email)
			removed++
		}
	}
	return removed
}

// generateCode produces a random six-digit verification code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
