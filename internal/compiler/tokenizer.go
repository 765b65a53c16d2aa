package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	commentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
	stringPattern  = regexp.MustCompile(`"(\\.|[^"\\])*"`)
	structural     = strings.NewReplacer(
		"(", " ( ", ")", " ) ",
		"{", " { ", "}", " } ",
		"[", " [ ", "]", " ] ",
		",", " , ",
	)
	placeholderPattern = regexp.MustCompile(`^@@\d+@@$`)
)

// Placeholders maps a placeholder token (@@N@@) back to the string literal it replaced.
type Placeholders map[string]string

// Tokenize splits MDSL text into tokens. Block comments are removed and every
// distinct double-quoted literal is swapped for a placeholder so its content is
// never split. Tokenizing never fails: malformed input surfaces as parse errors.
func Tokenize(text string) ([]string, Placeholders) {
	text = commentPattern.ReplaceAllString(text, " ")

	placeholders := make(Placeholders)
	byValue := make(map[string]string)
	text = stringPattern.ReplaceAllStringFunc(text, func(literal string) string {
		value := unquote(literal)
		placeholder, ok := byValue[value]
		if !ok {
			placeholder = fmt.Sprintf("@@%d@@", len(byValue))
			byValue[value] = placeholder
			placeholders[placeholder] = value
		}
		return " " + placeholder + " "
	})

	return strings.Fields(structural.Replace(text)), placeholders
}

// unquote decodes escape sequences, keeping the raw inner text when the literal
// is not a valid Go-style quoted string.
func unquote(literal string) string {
	if value, err := strconv.Unquote(literal); err == nil {
		return value
	}
	return literal[1 : len(literal)-1]
}

func isPlaceholder(token string) bool {
	return placeholderPattern.MatchString(token)
}
