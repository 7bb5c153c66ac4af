package ai

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrBudgetExceeded is returned when a user's daily AI spend is exhausted.
var ErrBudgetExceeded = errors.New("daily AI budget exceeded")

// Per-token prices in USD. Unknown models fall back to the chat default.
const (
	chatInputCostPerToken  = 0.15 / 1_000_000
	chatOutputCostPerToken = 0.60 / 1_000_000
	embeddingCostPerToken  = 0.02 / 1_000_000
)

// usageEntry accumulates one user's spend for one UTC day.
type usageEntry struct {
	day              string
	promptTokens     int64
	completionTokens int64
	costUSD          float64
	requestCount     int64
}

// UsageMonitor tracks per-user daily AI spend against a budget. State is
// in-memory: a restart resets the counters, which is acceptable for a
// safety valve.
type UsageMonitor struct {
	mu             sync.Mutex
	entries        map[int32]*usageEntry
	dailyBudgetUSD float64
}

// NewUsageMonitor creates a monitor. A non-positive budget disables the
// cutoff but spend is still tracked.
func NewUsageMonitor(dailyBudgetUSD float64) *UsageMonitor {
	return &UsageMonitor{
		entries:        make(map[int32]*usageEntry),
		dailyBudgetUSD: dailyBudgetUSD,
	}
}

// CheckBudget returns ErrBudgetExceeded when the user has spent their
// daily budget.
func (m *UsageMonitor) CheckBudget(userID int32) error {
	if m.dailyBudgetUSD <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.entryLocked(userID)
	if entry.costUSD >= m.dailyBudgetUSD {
		return ErrBudgetExceeded
	}
	return nil
}

// RecordChat accounts a chat completion against the user's daily spend.
func (m *UsageMonitor) RecordChat(userID int32, result *ChatResult) {
	if result == nil {
		return
	}
	cost := float64(result.PromptTokens)*chatInputCostPerToken +
		float64(result.CompletionTokens)*chatOutputCostPerToken
	m.record(userID, int64(result.PromptTokens), int64(result.CompletionTokens), cost)
}

// RecordEmbedding accounts an embedding request. Token count is estimated
// from the input length since the embeddings API reports no usage split.
func (m *UsageMonitor) RecordEmbedding(userID int32, inputLength int) {
	estimatedTokens := int64(inputLength) / 4
	if estimatedTokens < 1 {
		estimatedTokens = 1
	}
	m.record(userID, estimatedTokens, 0, float64(estimatedTokens)*embeddingCostPerToken)
}

// UserUsage is a snapshot of one user's spend for the current UTC day.
type UserUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	CostUSD          float64
	RequestCount     int64
	BudgetUSD        float64
}

// Usage returns the user's spend for the current UTC day.
func (m *UsageMonitor) Usage(userID int32) UserUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.entryLocked(userID)
	return UserUsage{
		PromptTokens:     entry.promptTokens,
		CompletionTokens: entry.completionTokens,
		CostUSD:          entry.costUSD,
		RequestCount:     entry.requestCount,
		BudgetUSD:        m.dailyBudgetUSD,
	}
}

func (m *UsageMonitor) record(userID int32, promptTokens, completionTokens int64, costUSD float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.entryLocked(userID)
	entry.promptTokens += promptTokens
	entry.completionTokens += completionTokens
	entry.costUSD += costUSD
	entry.requestCount++

	if m.dailyBudgetUSD > 0 && entry.costUSD >= m.dailyBudgetUSD {
		slog.Warn("user exhausted daily AI budget",
			"user_id", userID,
			"cost_usd", entry.costUSD,
			"budget_usd", m.dailyBudgetUSD)
	}
}

// entryLocked fetches the user's entry for today, resetting stale days.
// Callers must hold m.mu.
func (m *UsageMonitor) entryLocked(userID int32) *usageEntry {
	day := time.Now().UTC().Format(time.DateOnly)
	entry, ok := m.entries[userID]
	if !ok || entry.day != day {
		entry = &usageEntry{day: day}
		m.entries[userID] = entry
	}
	return entry
}
