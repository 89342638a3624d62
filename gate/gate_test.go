package gate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModeratorScanText(t *testing.T) {
	moderator := NewModerator([]string{"badword", "Spam"})

	tests := []struct {
		name     string
		text     string
		rejected bool
	}{
		{"clean message", "clean message", false},
		{"contains term", "this contains badword here", true},
		{"case insensitive body", "this contains BadWord here", true},
		{"case insensitive denylist entry", "pure spam content", true},
		{"substring match", "embeddedbadwordinside", true},
		{"empty body", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := moderator.ScanText(tt.text)
			if tt.rejected {
				assert.Error(t, err)
				assert.True(t, IsContentPolicyViolation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModeratorScanPayloadNestedStrings(t *testing.T) {
	moderator := NewModerator([]string{"badword"})

	clean := map[string]any{
		"body": "hello",
		"meta": map[string]any{"tags": []any{"friendly", "chat"}},
	}
	assert.NoError(t, moderator.ScanPayload(clean))

	dirty := map[string]any{
		"body": "hello",
		"meta": map[string]any{"tags": []any{"friendly", "has badword inside"}},
	}
	err := moderator.ScanPayload(dirty)
	assert.Error(t, err)
	assert.True(t, IsContentPolicyViolation(err))

	// Non-string values are ignored
	mixed := map[string]any{"count": 3, "ok": true, "ratio": 1.5}
	assert.NoError(t, moderator.ScanPayload(mixed))
}

func TestRateLimiterWindow(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	defer limiter.Stop()

	// Five submissions pass, the sixth is rejected
	for i := 0; i < 5; i++ {
		assert.NoError(t, limiter.Allow("alice@10.0.0.1"))
	}
	err := limiter.Allow("alice@10.0.0.1")
	assert.Error(t, err)
	assert.True(t, IsRateLimited(err))

	// Another source is unaffected
	assert.NoError(t, limiter.Allow("bob@10.0.0.2"))
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewRateLimiter(2, 50*time.Millisecond)
	defer limiter.Stop()

	assert.NoError(t, limiter.Allow("alice"))
	assert.NoError(t, limiter.Allow("alice"))
	assert.Error(t, limiter.Allow("alice"))

	// Once the window has elapsed the counter resets to one, so two more
	// submissions pass before the limit trips again
	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, limiter.Allow("alice"))
	assert.NoError(t, limiter.Allow("alice"))
	assert.Error(t, limiter.Allow("alice"))
}

func TestRateLimiterConcurrentIncrements(t *testing.T) {
	limiter := NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Allow("shared"); err == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// No lost updates: exactly the limit is admitted
	assert.Equal(t, 10, allowed)
}

func TestGateComposesModerationBeforeRate(t *testing.T) {
	g := New([]string{"badword"}, 1, time.Minute)
	defer g.Stop()

	// A denylisted body is rejected without consuming rate budget
	err := g.Check("alice", "totally badword content")
	assert.True(t, IsContentPolicyViolation(err))

	assert.NoError(t, g.Check("alice", "clean message"))

	// Budget of one is now spent
	err = g.Check("alice", "another clean message")
	assert.True(t, IsRateLimited(err))
}

func TestGateCheckPayload(t *testing.T) {
	g := New([]string{"badword"}, 5, time.Minute)
	defer g.Stop()

	err := g.CheckPayload("alice", map[string]any{
		"subject": "hi",
		"detail":  map[string]any{"note": "some badword here"},
	})
	assert.True(t, IsContentPolicyViolation(err))

	assert.NoError(t, g.CheckPayload("alice", map[string]any{"subject": "hi"}))
}
