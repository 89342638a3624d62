// Package gate applies pre-acceptance checks to message-creating
// submissions: a denylist content scan followed by per-source rate
// limiting. Reads and non-creating mutations bypass the gate.
package gate

import "time"

// Gate composes the moderation scan and the rate check. Moderation runs
// first; both must pass before a submission reaches the engine.
type Gate struct {
	moderator *Moderator
	limiter   *RateLimiter
}

// New builds a Gate from a denylist and rate-limit settings
func New(blockedWords []string, maxPerWindow int, window time.Duration) *Gate {
	return &Gate{
		moderator: NewModerator(blockedWords),
		limiter:   NewRateLimiter(maxPerWindow, window),
	}
}

// Check validates a plain-text submission from source
func (g *Gate) Check(source, body string) error {
	if err := g.moderator.ScanText(body); err != nil {
		return err
	}
	return g.limiter.Allow(source)
}

// CheckPayload validates a structured submission from source, scanning
// every nested string value
func (g *Gate) CheckPayload(source string, payload map[string]any) error {
	if err := g.moderator.ScanPayload(payload); err != nil {
		return err
	}
	return g.limiter.Allow(source)
}

// Stop releases the limiter's background resources
func (g *Gate) Stop() {
	g.limiter.Stop()
}
