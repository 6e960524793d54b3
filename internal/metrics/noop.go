package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncEntryCreated()                          {}
func (n *NoopRecorder) IncEntryUpdated()                          {}
func (n *NoopRecorder) IncEntryDeleted()                          {}
func (n *NoopRecorder) AddEntriesImported(int)                    {}
func (n *NoopRecorder) ObserveViewDuration(string, time.Duration) {}
func (n *NoopRecorder) IncCalendarCacheHit()                      {}
func (n *NoopRecorder) IncCalendarCacheMiss()                     {}
func (n *NoopRecorder) IncThemeUpdated()                          {}
func (n *NoopRecorder) IncThemeIgnored()                          {}
func (n *NoopRecorder) IncAccountRegistered()                     {}
func (n *NoopRecorder) IncLogin(string)                           {}
