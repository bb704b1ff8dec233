package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collaborator names used as keys in upstream counters.
const (
	UpstreamDictionary = "dictionary"
	UpstreamAI         = "ai"
	UpstreamWeb        = "web"
	UpstreamPhonetic   = "phonetic"
)

type StatsSnapshot struct {
	Lookups            uint64            `json:"lookups"`
	VocabExtractions   uint64            `json:"vocab_extractions"`
	QuizzesGenerated   uint64            `json:"quizzes_generated"`
	PagesFetched       uint64            `json:"pages_fetched"`
	ErrorsTotal        uint64            `json:"errors_total"`
	UpstreamSecondsAvg float64           `json:"upstream_seconds_avg"`
	UpstreamCalls      map[string]uint64 `json:"upstream_calls,omitempty"`
	PagesByHost        map[string]uint64 `json:"pages_by_host,omitempty"`
	ErrorsByType       map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent  map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	lookups          uint64
	vocabExtractions uint64
	quizzesGenerated uint64
	pagesFetched     uint64
	errorsTotal      uint64

	upstreamCount uint64
	upstreamNanos uint64

	statsMu           sync.Mutex
	upstreamCalls     = map[string]uint64{}
	pagesByHost       = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncLookup() {
	atomic.AddUint64(&lookups, 1)
}

func IncVocabExtraction() {
	atomic.AddUint64(&vocabExtractions, 1)
}

func IncQuizGenerated() {
	atomic.AddUint64(&quizzesGenerated, 1)
}

// IncPageFetched counts a successful page fetch; host may be empty.
func IncPageFetched(host string) {
	atomic.AddUint64(&pagesFetched, 1)
	if host == "" {
		return
	}
	statsMu.Lock()
	pagesByHost[host]++
	statsMu.Unlock()
}

// ObserveUpstream records one call to an external collaborator.
func ObserveUpstream(collaborator string, d time.Duration) {
	if collaborator == "" {
		collaborator = "unknown"
	}
	statsMu.Lock()
	upstreamCalls[collaborator]++
	statsMu.Unlock()
	if d <= 0 {
		return
	}
	atomic.AddUint64(&upstreamCount, 1)
	atomic.AddUint64(&upstreamNanos, uint64(d.Nanoseconds()))
}

func IncError(errType, component string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	callsCopy := copyMap(upstreamCalls)
	hostsCopy := copyMap(pagesByHost)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&upstreamCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&upstreamNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		Lookups:            atomic.LoadUint64(&lookups),
		VocabExtractions:   atomic.LoadUint64(&vocabExtractions),
		QuizzesGenerated:   atomic.LoadUint64(&quizzesGenerated),
		PagesFetched:       atomic.LoadUint64(&pagesFetched),
		ErrorsTotal:        atomic.LoadUint64(&errorsTotal),
		UpstreamSecondsAvg: avg,
		UpstreamCalls:      callsCopy,
		PagesByHost:        hostsCopy,
		ErrorsByType:       errorsTypeCopy,
		ErrorsByComponent:  errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
