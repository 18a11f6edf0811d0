// Package suitespec loads suite definition files and validates them
// against an embedded CUE schema. Kind-specific kwargs constraints are
// enforced here, at load time, so a malformed suite is rejected before
// any evaluation starts.
package suitespec

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/dataveil/dataveil/internal/rule"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError is one schema violation in a suite document.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors aggregates every violation found in one document.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("suite validation failed: %s", strings.Join(msgs, "; "))
}

// suiteDoc mirrors the decoded shape of a validated suite document.
type suiteDoc struct {
	Name  string    `json:"name"`
	Rules []ruleDoc `json:"rules"`
}

type ruleDoc struct {
	ID          string         `json:"id"`
	Column      string         `json:"column"`
	Kind        string         `json:"kind"`
	Kwargs      map[string]any `json:"kwargs"`
	Description string         `json:"description"`
}

// Load parses and validates a CUE suite document and converts it into a
// rule.Suite. filename is used for error positions only.
func Load(data []byte, filename string) (rule.Suite, error) {
	cctx := cuecontext.New()

	schema := cctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The embedded schema is part of the binary; failing to compile
		// it is a programming error, not user input.
		return rule.Suite{}, fmt.Errorf("compile embedded schema: %w", err)
	}

	doc := cctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return rule.Suite{}, ValidationErrors(cueErrorList(err))
	}

	unified := doc.Unify(schema.LookupPath(cue.ParsePath("#Suite")))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return rule.Suite{}, ValidationErrors(cueErrorList(err))
	}

	var parsed suiteDoc
	if err := unified.Decode(&parsed); err != nil {
		return rule.Suite{}, ValidationErrors(cueErrorList(err))
	}

	return toSuite(parsed)
}

// LoadFile reads and validates a suite definition from disk.
func LoadFile(path string) (rule.Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rule.Suite{}, fmt.Errorf("read suite file: %w", err)
	}
	return Load(data, path)
}

// toSuite converts the decoded document into the engine's rule model,
// applying the checks the CUE disjunction cannot express cleanly:
// duplicate rule ids and the at-least-one-bound requirement.
func toSuite(doc suiteDoc) (rule.Suite, error) {
	var verrs ValidationErrors

	suite := rule.Suite{
		Name:  doc.Name,
		Rules: make([]rule.Rule, 0, len(doc.Rules)),
	}

	seen := make(map[string]bool, len(doc.Rules))
	for i, rd := range doc.Rules {
		path := fmt.Sprintf("rules[%d]", i)

		if seen[rd.ID] {
			verrs = append(verrs, ValidationError{Path: path, Message: fmt.Sprintf("duplicate rule id %q", rd.ID)})
		}
		seen[rd.ID] = true

		r := rule.Rule{
			ID:          rd.ID,
			Column:      rd.Column,
			Kind:        rule.Kind(rd.Kind),
			Kwargs:      rd.Kwargs,
			Description: rd.Description,
		}

		switch r.Kind {
		case rule.KindBetween, rule.KindLengthBetween, rule.KindRowCountBetween,
			rule.KindMeanBetween, rule.KindMinBetween, rule.KindMaxBetween:
			if _, _, err := r.Bounds(); err != nil {
				verrs = append(verrs, ValidationError{Path: path, Message: err.Error()})
			}
		case rule.KindOfType:
			// The schema fixes the type enum; a date type still needs its
			// format declared.
			if t, _ := r.StringKwarg("type"); t == "date" {
				if _, err := r.StringKwarg("strftime_format"); err != nil {
					verrs = append(verrs, ValidationError{Path: path, Message: "type \"date\" requires strftime_format"})
				}
			}
		}

		suite.Rules = append(suite.Rules, r)
	}

	if len(verrs) > 0 {
		return rule.Suite{}, verrs
	}
	return suite, nil
}

// cueErrorList flattens a CUE error into per-position validation errors.
func cueErrorList(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		ve := ValidationError{Message: e.Error()}
		if path := e.Path(); len(path) > 0 {
			ve.Path = strings.Join(path, ".")
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error()})
	}
	return out
}
