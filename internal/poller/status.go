package poller

import "time"

// Status describes the recent health of the poll loop.
type Status struct {
	Running             bool      `json:"running"`
	World               string    `json:"world"`
	Filter              []string  `json:"filter"`
	Interval            string    `json:"interval"`
	Cycles              int       `json:"cycles"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastCycleID         string    `json:"lastCycleId,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// IsReady reports whether the poller is running, has had a success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if !s.Running || s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.status
	s.Running = p.running
	s.World = p.cfg.World
	s.Filter = p.cfg.Filter.Names()
	s.Interval = p.cfg.Interval.String()
	return s
}

func (p *Poller) recordAttempt(at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time, cycleID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Cycles++
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
	p.status.LastCycleID = cycleID
}

func (p *Poller) recordFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Cycles++
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
}
