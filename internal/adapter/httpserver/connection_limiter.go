package httpserver

import (
	"sync"
	"sync/atomic"
)

// LimitReason describes why a websocket connection was refused.
type LimitReason string

const (
	LimitReasonGlobal LimitReason = "global_limit"
	LimitReasonPerIP  LimitReason = "per_ip_limit"
	LimitReasonRate   LimitReason = "rate_limit"
)

// ConnectionLimits caps concurrent websocket connections, in total and per client IP.
// The per-IP connection rate is enforced separately by the /socket rate limiter.
type ConnectionLimits struct {
	current atomic.Int64
	max     int64

	mu     sync.Mutex
	perIP  map[string]int
	maxPer int
}

func NewConnectionLimits(globalMax, perIPMax int) *ConnectionLimits {
	return &ConnectionLimits{
		max:    int64(globalMax),
		perIP:  make(map[string]int),
		maxPer: perIPMax,
	}
}

// Acquire reserves a slot for ip. On failure nothing is reserved.
func (l *ConnectionLimits) Acquire(ip string) (bool, LimitReason) {
	if !l.acquireGlobal() {
		return false, LimitReasonGlobal
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.perIP[ip] >= l.maxPer {
		l.current.Add(-1)
		return false, LimitReasonPerIP
	}
	l.perIP[ip]++
	return true, ""
}

// Release frees the slot reserved by a successful Acquire.
func (l *ConnectionLimits) Release(ip string) {
	l.mu.Lock()
	if count := l.perIP[ip]; count > 0 {
		if count == 1 {
			delete(l.perIP, ip)
		} else {
			l.perIP[ip] = count - 1
		}
	}
	l.mu.Unlock()

	l.current.Add(-1)
}

func (l *ConnectionLimits) acquireGlobal() bool {
	for {
		current := l.current.Load()
		if current >= l.max {
			return false
		}
		if l.current.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Current returns the number of reserved slots.
func (l *ConnectionLimits) Current() int64 {
	return l.current.Load()
}

// CountForIP returns the number of reserved slots for ip.
func (l *ConnectionLimits) CountForIP(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.perIP[ip]
}
