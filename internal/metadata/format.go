package metadata

import (
	"fmt"
	"strings"
	"time"

	"github.com/On-Jun9/NamePipe/internal/naming"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

const (
	DefaultDateFormat = "YYYY-MM-DD"
	DefaultSeparator  = "_"
)

type dateToken struct {
	token string
	value func(t time.Time) string
}

// YYYY must come before YY so the shorter token never matches inside it.
var dateTokens = []dateToken{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"HH", func(t time.Time) string { return fmt.Sprintf("%02d", t.Hour()) }},
	{"mm", func(t time.Time) string { return fmt.Sprintf("%02d", t.Minute()) }},
	{"ss", func(t time.Time) string { return fmt.Sprintf("%02d", t.Second()) }},
}

// FormatDate renders t using pattern tokens YYYY, YY, MM, DD, HH, mm and ss.
// Each token is replaced in its own pass; everything else in pattern is
// copied literally.
func FormatDate(t time.Time, pattern string) string {
	out := pattern
	for _, tok := range dateTokens {
		out = strings.ReplaceAll(out, tok.token, tok.value(t))
	}
	return out
}

// RenameByDate places the formatted date before or after the base name of
// filename, joined by the rule separator, keeping the extension.
func RenameByDate(filename string, t time.Time, rule types.DateRule) string {
	format := rule.Format
	if format == "" {
		format = DefaultDateFormat
	}
	sep := rule.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	base, ext := naming.Split(filename)
	date := FormatDate(t, format)

	if rule.Position == types.DatePositionSuffix {
		return base + sep + date + ext
	}
	return date + sep + base + ext
}
