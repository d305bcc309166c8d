// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives URL identifiers from course titles.
//
// # Rules
//
// The title is lowercased, every character that is neither an ASCII word
// character ([A-Za-z0-9_]) nor whitespace is dropped, and each run of
// whitespace becomes a single hyphen. Whitespace covers ASCII whitespace and
// the Unicode space separators (Zs) such as a no-break space. Accented letters are not transliterated:
// "Panadería" becomes "panadera". Collisions are left to the unique index.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonWord matches anything outside ASCII word characters and whitespace.
	nonWord = regexp.MustCompile(`[^\w\s\p{Zs}]`)
	// whitespaceRun collapses consecutive whitespace into one separator.
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// From converts a course title into its slug.
func From(title string) string {
	result := strings.ToLower(title)
	result = nonWord.ReplaceAllString(result, "")
	return whitespaceRun.ReplaceAllString(result, "-")
}
