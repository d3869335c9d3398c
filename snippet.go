package matex

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Snippet is one runnable shell block extracted from documentation, together
// with its declared execution metadata. Snippets are immutable and scoped to
// one materialization pass.
type Snippet struct {
	DocumentID string   // stem of the Markdown file the block came from
	RunID      string   // value of the testrun pragma
	Body       string   // full block body, pragma lines included
	Targets    []string // repositories to materialize, in declaration order
	Requires   []string // external tools the snippet needs on PATH

	Timeout      time.Duration // execution deadline
	ExpectedExit int           // exit code the snippet must produce
}

// fenceRe matches fenced code blocks tagged sh or bash and captures the
// content between the fences.
var fenceRe = regexp.MustCompile("(?ms)^```(?:sh|bash)[ \t]*\n(.*?)^```")

const (
	pragmaPrefix  = "# pragma:"
	pragmaTestrun = "testrun"
)

// parsePragmas extracts "# pragma: key value" directives from a block body.
// Most keys are single-valued; "materialize" may repeat and is returned
// separately, in order.
func parsePragmas(body string) (pragmas map[string]string, targets []string) {
	pragmas = make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		stripped := strings.TrimSpace(line)
		if !strings.HasPrefix(stripped, pragmaPrefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(stripped, pragmaPrefix))
		key, value, _ := strings.Cut(rest, " ")
		if key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if key == "materialize" {
			targets = append(targets, value)
			continue
		}
		pragmas[key] = value
	}
	return pragmas, targets
}

// ParseSnippets extracts the runnable snippets from one Markdown document.
// Blocks without a testrun pragma are ignored. Malformed annotations abort
// their own block only: the block is reported as a *PragmaError and the
// remaining blocks are still returned.
func ParseSnippets(fs afero.Fs, path string, defaultTimeout time.Duration) ([]Snippet, []error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, []error{err}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var (
		snippets []Snippet
		errs     []error
	)
	for _, m := range fenceRe.FindAllStringSubmatch(string(data), -1) {
		body := m[1]
		if !strings.Contains(body, pragmaPrefix+" "+pragmaTestrun) {
			continue
		}
		sn, err := buildSnippet(stem, body, defaultTimeout)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		snippets = append(snippets, sn)
	}
	return snippets, errs
}

// buildSnippet validates one block's pragmas and assembles the Snippet.
func buildSnippet(stem, body string, defaultTimeout time.Duration) (Snippet, error) {
	pragmas, targets := parsePragmas(body)

	sn := Snippet{
		DocumentID:   stem,
		RunID:        pragmas[pragmaTestrun],
		Body:         body,
		Targets:      targets,
		Timeout:      defaultTimeout,
		ExpectedExit: 0,
	}

	if sn.RunID == "" && len(targets) > 0 {
		return Snippet{}, &PragmaError{File: stem, Reason: "materialize requires a named testrun"}
	}
	for _, target := range targets {
		if target == "" {
			return Snippet{}, &PragmaError{File: stem, Reason: "materialize pragma has no target name"}
		}
	}
	if v, ok := pragmas["timeout"]; ok {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Snippet{}, &PragmaError{File: stem, Reason: fmt.Sprintf("invalid timeout %q", v)}
		}
		sn.Timeout = time.Duration(secs) * time.Second
	}
	if v, ok := pragmas["exitcode"]; ok {
		code, err := strconv.Atoi(v)
		if err != nil {
			return Snippet{}, &PragmaError{File: stem, Reason: fmt.Sprintf("invalid exitcode %q", v)}
		}
		sn.ExpectedExit = code
	}
	if v, ok := pragmas["requires"]; ok {
		sn.Requires = strings.Fields(v)
	}
	return sn, nil
}

// LoadSnippets walks contentDir recursively and returns the runnable
// snippets of every Markdown file under it, in stable path order, plus the
// pragma errors encountered along the way. Content trees may nest sections,
// so depth is not limited.
func LoadSnippets(fs afero.Fs, contentDir string, defaultTimeout time.Duration) ([]Snippet, []error) {
	var paths []string
	err := afero.Walk(fs, contentDir, func(path string, info iofs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, []error{fmt.Errorf("scan %s: %w", contentDir, err)}
	}
	sort.Strings(paths)

	var (
		snippets []Snippet
		errs     []error
	)
	for _, path := range paths {
		sns, perrs := ParseSnippets(fs, path, defaultTimeout)
		snippets = append(snippets, sns...)
		errs = append(errs, perrs...)
	}
	return snippets, errs
}
