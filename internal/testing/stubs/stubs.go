// Package stubs manages inert stand-ins for optional integrations.
//
// Some integrations (PDF rendering, mail delivery) are optional at
// runtime. Tests that exercise the core flow register stubs so the suite
// runs without the integration; tests that exercise the integration
// itself skip when only a stub is present. A missing optional dependency
// is never a test failure.
//
// Usage:
//
//	stubs.RegisterStub(stubs.CertificateRenderer, certificate.NewNoopRenderer())
//
//	func TestRealPDF(t *testing.T) {
//	    stubs.SkipUnlessAvailable(t, stubs.CertificateRenderer)
//	    r, _ := stubs.Lookup[certificate.Renderer](stubs.CertificateRenderer)
//	    ...
//	}
package stubs

import (
	"sync"
	"testing"
)

// Well-known integration names.
const (
	CertificateRenderer = "certificate_renderer"
	MailSender          = "mail_sender"
)

type entry struct {
	value any
	stub  bool
}

var (
	mu    sync.RWMutex
	impls = map[string]entry{}
)

// Register installs a real implementation for an integration.
func Register(name string, v any) {
	mu.Lock()
	defer mu.Unlock()
	impls[name] = entry{value: v}
}

// RegisterStub installs an inert stand-in for an integration. The
// integration reports as unavailable but lookups still return a usable
// value, so code paths that touch it run as no-ops instead of panicking.
func RegisterStub(name string, v any) {
	mu.Lock()
	defer mu.Unlock()
	impls[name] = entry{value: v, stub: true}
}

// Lookup returns the registered implementation (real or stub) typed as T.
func Lookup[T any](name string) (T, bool) {
	mu.RLock()
	e, ok := impls[name]
	mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}
	typed, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Available reports whether a real implementation is registered.
// A stub does not count.
func Available(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := impls[name]
	return ok && !e.stub
}

// SkipUnlessAvailable skips the test when the integration has no real
// implementation. Tests needing the real thing call this first so a
// missing optional dependency skips instead of failing.
func SkipUnlessAvailable(t *testing.T, name string) {
	t.Helper()
	if !Available(name) {
		t.Skipf("optional integration %q not available, skipping", name)
	}
}

// Reset removes all registrations. For tests of this package only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	impls = map[string]entry{}
}
