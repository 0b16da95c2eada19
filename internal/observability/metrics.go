package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for tool invocations and HTTP
// requests.
type Metrics struct {
	mu           sync.Mutex
	toolCount    map[string]int64
	requestCount map[string]int64
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		toolCount:    make(map[string]int64),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordTool increments the counter for a tool invocation outcome.
func (m *Metrics) RecordTool(tool, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := tool + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCount[key]++
}

// ToolCount returns the recorded count for a tool/outcome pair.
func (m *Metrics) ToolCount(tool, outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toolCount[tool+"|"+outcome]
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
