package middleware

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 3, Window: time.Minute, KeyFn: KeyByIP})

	for i := 1; i <= 3; i++ {
		if !rl.Allow("ip:10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("ip:10.0.0.1") {
		t.Error("request 4 should be rejected")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute, KeyFn: KeyByVoterID})

	if !rl.Allow("voter:v1") {
		t.Fatal("first v1 request should be allowed")
	}
	if rl.Allow("voter:v1") {
		t.Error("second v1 request should be rejected")
	}
	// A different voter has a fresh budget.
	if !rl.Allow("voter:v2") {
		t.Error("first v2 request should be allowed")
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: 30 * time.Millisecond, KeyFn: KeyByIP})

	if !rl.Allow("ip:10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("ip:10.0.0.1") {
		t.Fatal("second request in window should be rejected")
	}

	time.Sleep(50 * time.Millisecond)
	if !rl.Allow("ip:10.0.0.1") {
		t.Error("request after window reset should be allowed")
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 50, Window: time.Minute, KeyFn: KeyByIP})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("ip:shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want exactly 50", allowed)
	}
}

func TestRateLimiter_ManyDistinctKeys(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute, KeyFn: KeyByIP})

	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("ip:10.0.%d.%d", i/256, i%256)
		if !rl.Allow(key) {
			t.Fatalf("first request for %s should be allowed", key)
		}
	}
}
