// Package sanitizer normalizes free text before it is validated and stored.
// Every function is idempotent.
package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims s and collapses every run of whitespace into one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeName is used for doctor and patient names.
func NormalizeName(name string) string {
	return Pipeline{dropControl, TrimAndNormalize}.Apply(name)
}

func NormalizeSpecialization(specialization string) string {
	return Pipeline{dropControl, TrimAndNormalize}.Apply(specialization)
}

// NormalizeText cleans a reason for visit or a cancel reason. Line breaks are
// folded because the text ends up in single line notifications.
func NormalizeText(text string) string {
	return Pipeline{dropControl, TrimAndNormalize}.Apply(text)
}
