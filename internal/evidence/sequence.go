// sequence.go — SequencePatternAnalyzer: learns windowed n-grams of step
// labels per page-URL pattern and scores candidates against them
// (spec.md §4.8).
package evidence

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// DefaultSaveDebounce bounds how often a dirty analyzer persists
// (spec.md §4.8 "auto-saved on a debounce").
const DefaultSaveDebounce = 5 * time.Second

var numericSegment = regexp.MustCompile(`^[0-9]+$`)

// NormalizeURLPattern wildcards numeric path segments so /orders/482 and
// /orders/91 share one learned pattern (spec.md §4.8 "numeric path
// segments wildcarded").
func NormalizeURLPattern(rawURL string) string {
	path := rawURL
	if idx := strings.Index(rawURL, "?"); idx >= 0 {
		path = rawURL[:idx]
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if numericSegment.MatchString(s) {
			segments[i] = "*"
		}
	}
	return strings.Join(segments, "/")
}

// SequencePatternAnalyzer learns n-grams (n in {2,3,4}) of step labels
// scoped to a URL pattern and scores how well a candidate element's label
// fits the expected workflow at this point in the sequence.
type SequencePatternAnalyzer struct {
	mu         sync.Mutex
	patterns   map[string][]types.SequencePattern
	dirty      bool
	lastSaveAt time.Time

	repo     ports.Repository
	clock    ports.Clock
	debounce time.Duration
	log      *logrus.Entry
}

// NewSequencePatternAnalyzer constructs an analyzer backed by repo for
// persistence. repo may be nil, in which case the analyzer runs
// in-memory only (useful for tests and for evaluators that don't own
// persistence).
func NewSequencePatternAnalyzer(repo ports.Repository, clock ports.Clock, log *logrus.Entry) *SequencePatternAnalyzer {
	if clock == nil {
		clock = ports.RealClock{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SequencePatternAnalyzer{
		patterns: make(map[string][]types.SequencePattern),
		repo:     repo,
		clock:    clock,
		debounce: DefaultSaveDebounce,
		log:      log,
	}
}

// Load reads the persisted export blob, if any. Load is best-effort and
// non-fatal: a missing blob, a read error, or a MAJOR version mismatch
// all leave the analyzer empty rather than returning an error up the
// stack (spec.md §4.8 "pattern load on startup is best-effort and
// non-fatal").
func (a *SequencePatternAnalyzer) Load() {
	if a.repo == nil {
		return
	}
	export, ok, err := a.repo.LoadSequencePatterns()
	if err != nil {
		a.log.WithError(err).Warn("sequence patterns: load failed, starting empty")
		return
	}
	if !ok {
		return
	}
	if !export.Version.Compatible(types.CurrentPatternsVersion) {
		a.log.WithFields(logrus.Fields{
			"loaded_major":  export.Version.Major,
			"current_major": types.CurrentPatternsVersion.Major,
		}).Warn("sequence patterns: MAJOR version mismatch, rejecting")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range export.Patterns {
		a.patterns[p.URLPattern] = append(a.patterns[p.URLPattern], p)
	}
}

// ObserveSequence records every valid n-gram window (n in {2,3,4}) ending
// at the most recent label in allLabels (spec.md §4.8 "windowed n-grams of
// step labels (n in {2,3,4})").
func (a *SequencePatternAnalyzer) ObserveSequence(rawURL string, allLabels []string) {
	pattern := NormalizeURLPattern(rawURL)
	for n := 2; n <= 4; n++ {
		if len(allLabels) < n {
			continue
		}
		window := append([]string{}, allLabels[len(allLabels)-n:]...)
		a.recordOccurrence(pattern, window)
	}
}

func (a *SequencePatternAnalyzer) recordOccurrence(urlPattern string, window []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	list := a.patterns[urlPattern]
	for i := range list {
		if sameLabels(list[i].Labels, window) {
			list[i].Occurrences++
			list[i].Confidence = confidenceFromOccurrences(list[i].Occurrences)
			a.dirty = true
			return
		}
	}
	list = append(list, types.SequencePattern{
		URLPattern:  urlPattern,
		Labels:      window,
		Occurrences: 1,
		Confidence:  confidenceFromOccurrences(1),
	})
	a.patterns[urlPattern] = list
	a.dirty = true
}

// confidenceFromOccurrences maps an occurrence count to [0,1], saturating
// so a handful of repeats already carries strong signal without one-shot
// noise dominating.
func confidenceFromOccurrences(occurrences int) float64 {
	return clamp01(1 - 1/(1+float64(occurrences)/3))
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Score returns the best-fitting pattern's contribution for a candidate
// label given the current recent-label sequence: pattern confidence x
// label-fit x overall label-similarity (spec.md §4.8).
func (a *SequencePatternAnalyzer) Score(rawURL string, candidateLabel string, recentLabels []string) float64 {
	pattern := NormalizeURLPattern(rawURL)

	a.mu.Lock()
	list := append([]types.SequencePattern{}, a.patterns[pattern]...)
	a.mu.Unlock()

	if len(list) == 0 {
		return 0
	}

	best := 0.0
	for _, p := range list {
		fit := labelFit(p.Labels, candidateLabel)
		sim := labelSimilarity(p.Labels, recentLabels)
		score := p.Confidence * fit * sim
		if score > best {
			best = score
		}
	}
	return clamp01(best)
}

// labelFit rewards a pattern whose final label matches the candidate,
// i.e. the pattern predicts this candidate is the next expected step.
func labelFit(patternLabels []string, candidateLabel string) float64 {
	if len(patternLabels) == 0 || candidateLabel == "" {
		return 0
	}
	last := patternLabels[len(patternLabels)-1]
	if strings.EqualFold(last, candidateLabel) {
		return 1.0
	}
	if strings.Contains(strings.ToLower(last), strings.ToLower(candidateLabel)) {
		return 0.5
	}
	return 0
}

// labelSimilarity scores how much of the pattern's leading context (all
// but its last label) appears, in order, within the tail of the current
// recent-label sequence.
func labelSimilarity(patternLabels, recentLabels []string) float64 {
	if len(patternLabels) <= 1 {
		return 1.0
	}
	context := patternLabels[:len(patternLabels)-1]
	if len(recentLabels) < len(context) {
		return 0
	}
	tail := recentLabels[len(recentLabels)-len(context):]
	matches := 0
	for i := range context {
		if strings.EqualFold(context[i], tail[i]) {
			matches++
		}
	}
	return float64(matches) / float64(len(context))
}

// MaybeSave persists the current pattern set if it is dirty and the
// debounce window has elapsed since the last save (spec.md §4.8 "dirty-
// flagged and auto-saved on a debounce"). Returns false without error if
// a save was skipped because it wasn't due.
func (a *SequencePatternAnalyzer) MaybeSave() (bool, error) {
	if a.repo == nil {
		return false, nil
	}

	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return false, nil
	}
	now := a.clock.Now()
	if !a.lastSaveAt.IsZero() && now.Sub(a.lastSaveAt) < a.debounce {
		a.mu.Unlock()
		return false, nil
	}
	export := a.exportLocked(now)
	a.dirty = false
	a.lastSaveAt = now
	a.mu.Unlock()

	if err := a.repo.SaveSequencePatterns(export); err != nil {
		a.log.WithError(err).Warn("sequence patterns: save failed")
		return false, err
	}
	return true, nil
}

func (a *SequencePatternAnalyzer) exportLocked(now time.Time) types.SequencePatternsExport {
	var all []types.SequencePattern
	for _, list := range a.patterns {
		all = append(all, list...)
	}
	return types.SequencePatternsExport{
		Version:    types.CurrentPatternsVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Patterns:   all,
	}
}
