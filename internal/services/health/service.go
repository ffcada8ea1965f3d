package health

import (
	"context"
	"sync"
	"time"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// Service encapsulates health-related checks.
type Service struct {
	mu      sync.RWMutex
	checks  []namedCheck
	timeout time.Duration
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{timeout: 3 * time.Second}
}

// Register adds a readiness check. Checks run in registration order.
func (s *Service) Register(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, namedCheck{name: name, check: check})
}

// Status returns a simple liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Report is the outcome of a readiness probe. Checks maps each dependency to
// "ok" or its error text.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Ready runs every registered check concurrently with a shared deadline.
func (s *Service) Ready(ctx context.Context) Report {
	s.mu.RLock()
	checks := append([]namedCheck(nil), s.checks...)
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]error, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c namedCheck) {
			defer wg.Done()
			results[i] = c.check(ctx)
		}(i, c)
	}
	wg.Wait()

	report := Report{OK: true, Checks: make(map[string]string, len(checks))}
	for i, c := range checks {
		if results[i] != nil {
			report.OK = false
			report.Checks[c.name] = results[i].Error()
			continue
		}
		report.Checks[c.name] = "ok"
	}
	return report
}
