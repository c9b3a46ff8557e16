package telemetry

import (
	"sync"
)

// Report is a single call recorded by TestAPI.
type Report struct {
	Kind   string
	Id     string
	Params []any
}

const (
	KindBroken  = "broken"
	KindWarning = "warning"
	KindDebug   = "debug"
	KindCount   = "count"
)

// TestAPI records every report so tests can assert on them.
type TestAPI struct {
	mu      sync.Mutex
	reports []Report
}

func NewTestAPI() *TestAPI {
	return &TestAPI{}
}

func (t *TestAPI) record(kind, id string, params []any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reports = append(t.reports, Report{Kind: kind, Id: id, Params: params})
}

func (t *TestAPI) ReportBroken(id string, params ...any) {
	t.record(KindBroken, id, params)
}

func (t *TestAPI) ReportWarning(id string, params ...any) {
	t.record(KindWarning, id, params)
}

func (t *TestAPI) ReportDebug(msg string, params ...any) {
	t.record(KindDebug, msg, params)
}

func (t *TestAPI) ReportCount(id string, count int64) {
	t.record(KindCount, id, []any{count})
}

// Reports returns the recorded reports of the given kind, or all of them if kind is empty.
func (t *TestAPI) Reports(kind string) []Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Report
	for _, r := range t.reports {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
