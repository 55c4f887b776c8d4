// Package rules turns a RuleSpec into a filename transform.
//
// Stages always run in the same order: literal replace, regex replace,
// prefix, suffix, sequence, case. Each stage reads the output of the
// previous one. The engine never fails; patterns that do not compile are
// reported as diagnostics and skipped.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/On-Jun9/NamePipe/internal/naming"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// DiagnosticInvalidPattern marks a regex that failed to compile.
const DiagnosticInvalidPattern = "InvalidPattern"

const (
	placeholderNumber = "{n}"
	placeholderName   = "{name}"
)

type compiledRegex struct {
	re          *regexp.Regexp
	replacement string
}

// Engine is a compiled RuleSpec. It is safe for concurrent use.
type Engine struct {
	spec    types.RuleSpec
	regexes []compiledRegex
}

// Compile prepares spec for repeated application. Invalid regex patterns are
// dropped and described in the returned diagnostics.
func Compile(spec types.RuleSpec) (*Engine, []types.Diagnostic) {
	regexes, diags := compileRegexes(spec.Regex)
	return &Engine{spec: spec, regexes: regexes}, diags
}

func compileRegexes(list []types.RegexReplacement) ([]compiledRegex, []types.Diagnostic) {
	var (
		out   []compiledRegex
		diags []types.Diagnostic
	)
	for _, r := range list {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			diags = append(diags, types.Diagnostic{
				Kind:    DiagnosticInvalidPattern,
				Pattern: r.Pattern,
				Message: fmt.Sprintf("invalid regex %q skipped: %v", r.Pattern, err),
			})
			continue
		}
		out = append(out, compiledRegex{re: re, replacement: r.Replacement})
	}
	return out, diags
}

// Apply transforms name. index is the position of the file in the batch and
// only affects the sequence stage (number = Start + index).
func (e *Engine) Apply(name string, index int) string {
	result := name

	for _, r := range e.spec.Replace {
		if r.From == "" {
			continue
		}
		result = strings.ReplaceAll(result, r.From, r.To)
	}

	result = applyRegexes(result, e.regexes)

	if e.spec.Prefix != "" {
		result = e.spec.Prefix + result
	}

	if e.spec.Suffix != "" {
		result = naming.WithSuffix(result, e.spec.Suffix)
	}

	if e.spec.Sequence != nil {
		result = applySequence(result, *e.spec.Sequence, index)
	}

	return Fold(result, e.spec.Case)
}

// Apply compiles spec and applies it to name as the first file of a batch.
func Apply(name string, spec types.RuleSpec) (string, []types.Diagnostic) {
	e, diags := Compile(spec)
	return e.Apply(name, 0), diags
}

// ApplyRegex runs only the regex stage over name.
func ApplyRegex(name string, list []types.RegexReplacement) (string, []types.Diagnostic) {
	regexes, diags := compileRegexes(list)
	return applyRegexes(name, regexes), diags
}

func applyRegexes(name string, regexes []compiledRegex) string {
	for _, r := range regexes {
		name = r.re.ReplaceAllString(name, r.replacement)
	}
	return name
}

func applySequence(name string, seq types.SequenceRule, index int) string {
	base, ext := naming.Split(name)
	number := fmt.Sprintf("%0*d", seq.Padding, seq.Start+index)

	if seq.Template == "" {
		return number + "_" + base + ext
	}

	out := strings.ReplaceAll(seq.Template, placeholderNumber, number)
	out = strings.ReplaceAll(out, placeholderName, base)
	return out + ext
}
