// Package trace ports original_source/src/trace.rs's start_timer!/end_timer!
// macros: TRACE-gated nested timing spans, logged through internal/logging
// rather than raw stdout since this module's ambient stack is zerolog-based.
// When TRACE=pprof, span timings also accumulate into a
// github.com/google/pprof profile, written to mirage.pprof on ExportProfile.
package trace

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/pprof/profile"

	"github.com/woopuiyung/mirage/internal/logging"
)

var (
	numIndent  int32
	onceIsOn   sync.Once
	isOn       bool
	onceIsProf sync.Once
	isProfile  bool

	profMu     sync.Mutex
	profileLog []span
)

type span struct {
	label    string
	duration time.Duration
}

func enabled() bool {
	onceIsOn.Do(func() { isOn = os.Getenv("TRACE") != "" })
	return isOn
}

func profilingEnabled() bool {
	onceIsProf.Do(func() { isProfile = os.Getenv("TRACE") == "pprof" })
	return isProfile
}

// Handle is returned by Start; call End to close the span.
type Handle struct {
	label   string
	started time.Time
	depth   int32
}

// Start opens a (possibly no-op) timing span labeled label.
func Start(label string) *Handle {
	if !enabled() {
		return nil
	}
	depth := atomic.AddInt32(&numIndent, 1) - 1
	logging.Logger("trace").Debug().Str("span", label).Msg(indent(depth) + label)
	return &Handle{label: label, started: time.Now(), depth: depth}
}

// End closes the span opened by Start, logging its elapsed duration.
func (h *Handle) End() {
	if h == nil {
		return
	}
	elapsed := time.Since(h.started)
	atomic.AddInt32(&numIndent, -1)
	logging.Logger("trace").Debug().
		Str("span", h.label).
		Dur("took", elapsed).
		Msg(indent(h.depth) + h.label + " finished")

	if profilingEnabled() {
		profMu.Lock()
		profileLog = append(profileLog, span{label: h.label, duration: elapsed})
		profMu.Unlock()
	}
}

// padChar matches trace.rs's PAD_CHAR.
const padChar = "·"

func indent(depth int32) string {
	return strings.Repeat(padChar, int(depth))
}

// ExportProfile writes accumulated span timings to path as a pprof profile,
// one sample per recorded span labeled by its name. It is a no-op unless
// TRACE=pprof was set. Intended to be called once, near process exit, by
// cmd/mirage.
func ExportProfile(path string) error {
	if !profilingEnabled() {
		return nil
	}
	profMu.Lock()
	spans := append([]span(nil), profileLog...)
	profMu.Unlock()

	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "cpu", Unit: "nanoseconds"}},
		TimeNanos:  time.Now().UnixNano(),
	}
	locByLabel := map[string]*profile.Location{}
	fnByLabel := map[string]*profile.Function{}
	var nextID uint64 = 1
	for _, s := range spans {
		fn, ok := fnByLabel[s.label]
		if !ok {
			fn = &profile.Function{ID: nextID, Name: s.label}
			nextID++
			fnByLabel[s.label] = fn
			p.Function = append(p.Function, fn)
		}
		loc, ok := locByLabel[s.label]
		if !ok {
			loc = &profile.Location{
				ID:   nextID,
				Line: []profile.Line{{Function: fn}},
			}
			nextID++
			locByLabel[s.label] = loc
			p.Location = append(p.Location, loc)
		}
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{s.duration.Nanoseconds()},
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Write(f)
}
