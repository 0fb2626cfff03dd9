package result

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kyokomi/emoji"

	"github.com/faultlinechaos/faultline-go/pkg/scenario"
	"github.com/faultlinechaos/faultline-go/pkg/types"
)

// Record captures the lifecycle of one experiment as seen by this process.
// The verdict starts as Awaited and ends as Reverted or RevertFailed.
type Record struct {
	ExperimentID  string
	Name          string
	ChaosType     types.ChaosType
	TargetService string
	Verdict       string
	StartedAt     time.Time
	CompletedAt   time.Time
	FailReason    string
}

// Registry is the in-memory ledger of experiment verdicts for one test run.
// Stop failures never propagate to callers, so the registry is where a suite
// can still find out that a rollback went wrong and the target may need
// manual remediation.
type Registry struct {
	mu      sync.Mutex
	records map[string]*Record
	order   []string
}

// NewRegistry prepares an empty verdict ledger
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*Record),
	}
}

// RecordStarted registers a freshly started experiment with the Awaited verdict
func (r *Registry) RecordStarted(experimentID, name string, scn scenario.Scenario) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[experimentID]; ok {
		return
	}
	r.records[experimentID] = &Record{
		ExperimentID:  experimentID,
		Name:          name,
		ChaosType:     scn.Type(),
		TargetService: scn.TargetService(),
		Verdict:       types.AwaitedVerdict,
		StartedAt:     time.Now(),
	}
	r.order = append(r.order, experimentID)
}

// RecordReverted marks the experiment's fault as cleanly rolled back
func (r *Registry) RecordReverted(experimentID string) {
	r.setVerdict(experimentID, types.RevertedVerdict, "")
}

// RecordRevertFailure marks the experiment's rollback as failed along with
// the reason reported by the transport
func (r *Registry) RecordRevertFailure(experimentID, reason string) {
	r.setVerdict(experimentID, types.RevertFailedVerdict, reason)
}

func (r *Registry) setVerdict(experimentID, verdict, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[experimentID]
	if !ok {
		return
	}
	rec.Verdict = verdict
	rec.FailReason = reason
	rec.CompletedAt = time.Now()
}

// Get returns a copy of the record for the given experiment id
func (r *Registry) Get(experimentID string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[experimentID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// RevertFailures returns copies of every record whose rollback failed,
// in start order
func (r *Registry) RevertFailures() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failures []Record
	for _, id := range r.order {
		if rec := r.records[id]; rec.Verdict == types.RevertFailedVerdict {
			failures = append(failures, *rec)
		}
	}
	return failures
}

// Healthy reports whether every completed experiment rolled back cleanly.
// Suites check this in teardown to catch faults that may have outlived
// their experiments.
func (r *Registry) Healthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.Verdict == types.RevertFailedVerdict {
			return false
		}
	}
	return true
}

// Len returns the number of experiments the registry has seen
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

// Summary renders one line per experiment in start order, with the verdict
// decorated the way the engine reports probe outcomes
func (r *Registry) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for _, id := range r.order {
		rec := r.records[id]
		verdict := rec.Verdict
		switch rec.Verdict {
		case types.RevertedVerdict:
			verdict += emoji.Sprint(" :thumbsup:")
		case types.RevertFailedVerdict:
			verdict += emoji.Sprint(" :thumbsdown:")
		}
		fmt.Fprintf(&sb, "%v experiment on %v target: %v, verdict: %v\n", rec.ChaosType, rec.TargetService, rec.Name, verdict)
	}
	return sb.String()
}
