package rules

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/On-Jun9/NamePipe/pkg/types"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var caseFolds = map[types.CaseMode]func(string) string{
	types.CaseUpper: strings.ToUpper,
	types.CaseLower: strings.ToLower,
	types.CaseTitle: titleCase,
}

// Fold applies mode to the whole of s, extension included. Unknown modes
// leave s unchanged.
func Fold(s string, mode types.CaseMode) string {
	if fn, ok := caseFolds[mode]; ok {
		return fn(s)
	}
	return s
}

// ValidCaseMode reports whether mode is empty or a known case mode.
func ValidCaseMode(mode types.CaseMode) bool {
	if mode == types.CaseNone {
		return true
	}
	_, ok := caseFolds[mode]
	return ok
}

func titleCase(s string) string {
	return wordPattern.ReplaceAllStringFunc(s, func(word string) string {
		r, size := utf8.DecodeRuneInString(word)
		return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
	})
}
