// network.go — NetworkCapture: bounded ring of recent fetch/XHR activity,
// pending-request tracking, and URL sanitization (spec.md §4.1 NetworkCapture).
package capture

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/tracewright/locatorcore/internal/buffers"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
	"github.com/tracewright/locatorcore/internal/util"
)

// DefaultNetworkRingCapacity bounds recent request history.
const DefaultNetworkRingCapacity = 100

// sensitiveQueryParams are redacted from captured URLs
// (spec.md §4.1 "known auth query parameters... are redacted").
var sensitiveQueryParams = map[string]bool{
	"token": true, "key": true, "secret": true, "password": true, "auth": true,
}

// ignoredPathSuffixes are static-asset/analytics paths NetworkCapture never
// records (spec.md §4.1 "Ignore patterns for static assets and analytics").
var ignoredPathSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".css", ".woff", ".woff2",
}

var analyticsHostPattern = regexp.MustCompile(`(?i)(google-analytics|googletagmanager|segment\.io|mixpanel|doubleclick)`)

// NetworkCapture owns the network-activity ring for one tab, and whether
// NetworkInterceptorPort-delivered requests are pending.
type NetworkCapture struct {
	mu      sync.Mutex
	ring    *buffers.RingBuffer[types.NetworkRequestSample]
	pending int
	readyFn func() bool // host-supplied document.readyState === 'complete' check
	running bool
}

// NewNetworkCapture constructs a NetworkCapture. readyFn reports whether
// the document has finished loading; it is supplied by the host bridge
// since "readyState" is page-context state the core cannot observe itself.
func NewNetworkCapture(readyFn func() bool) *NetworkCapture {
	if readyFn == nil {
		readyFn = func() bool { return true }
	}
	return &NetworkCapture{
		ring:    buffers.NewRingBuffer[types.NetworkRequestSample](DefaultNetworkRingCapacity),
		readyFn: readyFn,
	}
}

// Start begins accepting requests from a NetworkInterceptorPort stream.
// Hooking fetch/XHR is a host concern (spec.md §9 Design Notes); this only
// consumes the resulting channel until ctx is cancelled or the channel
// closes.
func (n *NetworkCapture) Start(ctx context.Context, port ports.NetworkInterceptorPort, tabID string) error {
	samples, err := port.Start(ctx, tabID)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.running = true
	n.mu.Unlock()

	util.SafeGo(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sample, ok := <-samples:
				if !ok {
					return
				}
				n.recordCompleted(sample)
			}
		}
	})
	return nil
}

// Stop restores the network interceptor transparently (spec.md §4.1
// "Transparent restore on stop()").
func (n *NetworkCapture) Stop(ctx context.Context, port ports.NetworkInterceptorPort, tabID string) error {
	n.mu.Lock()
	n.running = false
	n.pending = 0
	n.mu.Unlock()
	return port.Stop(ctx, tabID)
}

// RequestStarted marks one request as in flight (spec.md §4.1 NetworkCapture
// "pending request count"). The host bridge calls this when it observes a
// request begin, independently of when recordCompleted later logs it.
func (n *NetworkCapture) RequestStarted() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending++
}

// RequestFinished marks one pending request complete.
func (n *NetworkCapture) RequestFinished() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending > 0 {
		n.pending--
	}
}

// recordCompleted appends a finished request sample to the ring, after
// ignore-pattern filtering and URL sanitization.
func (n *NetworkCapture) recordCompleted(sample types.NetworkRequestSample) {
	if shouldIgnore(sample.URLPath) {
		return
	}
	sample.Origin = util.ExtractOrigin(sample.URLPath)
	sample.URLPath = SanitizeURL(sample.URLPath)
	if format := util.DetectBinaryFormat(sample.RawBody); format != nil {
		sample.BodyFormat = format.Name
	}
	sample.RawBody = nil
	n.ring.WriteOne(sample)
}

// Snapshot returns the NetworkEvidence at the moment of an action
// (spec.md §4.1 NetworkCapture).
func (n *NetworkCapture) Snapshot() types.NetworkEvidence {
	n.mu.Lock()
	pending := n.pending
	n.mu.Unlock()

	return types.NetworkEvidence{
		Recent:       n.ring.ReadLast(20),
		PendingCount: pending,
		WasIdle:      pending == 0 && n.readyFn(),
	}
}

// shouldIgnore reports whether a URL path matches a static-asset or
// analytics ignore pattern.
func shouldIgnore(urlPath string) bool {
	lower := strings.ToLower(urlPath)
	for _, suffix := range ignoredPathSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return analyticsHostPattern.MatchString(lower)
}

// SanitizeURL reduces the URL to its path and query string, replacing the
// value of each sensitive query parameter with REDACTED, matching NetworkCapture's redaction discipline
// (spec.md §4.1 "URLs are sanitized... redacted").
func SanitizeURL(rawURL string) string {
	path := util.ExtractURLPath(rawURL)
	if !strings.Contains(rawURL, "?") {
		return path
	}
	qIdx := strings.Index(rawURL, "?")
	query := rawURL[qIdx+1:]
	pairs := strings.Split(query, "&")
	kept := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		key := strings.ToLower(kv[0])
		if sensitiveQueryParams[key] {
			kept = append(kept, key+"=REDACTED")
			continue
		}
		kept = append(kept, pair)
	}
	if len(kept) == 0 {
		return path
	}
	return path + "?" + strings.Join(kept, "&")
}
