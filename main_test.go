package matex

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestMain(t *testing.M) {
	code := t.Run()

	os.Exit(code)
}

// fakeRunner scripts the Runner boundary. Every call is recorded as its
// joined command line; the behavior comes from the test-provided fn.
type fakeRunner struct {
	fn    func(dir string, env []string, name string, args ...string) (string, error)
	calls []string
}

func (r *fakeRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	r.calls = append(r.calls, strings.Join(append([]string{name}, args...), " "))
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.fn(dir, env, name, args...)
}

// called reports how many recorded command lines contain substr.
func (r *fakeRunner) called(substr string) int {
	n := 0
	for _, call := range r.calls {
		if strings.Contains(call, substr) {
			n++
		}
	}
	return n
}

func assertNoError(t *testing.T, err error, context string) {
	t.Helper()

	if err != nil {
		t.Fatalf("Unexpected error on %s: %v", context, err)
	}
}

func assertStatus(t *testing.T, res Result, want Status) {
	t.Helper()

	if res.Status != want {
		t.Fatalf("Expected status %q for %s, got %q (err: %v)", want, res.Branch, res.Status, res.Err)
	}
}
