// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert reads loosely typed form and query values.

Multipart video uploads carry every field as text. These helpers fall back
to a default on malformed input instead of failing the request; field-level
validation happens later in the service layer.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToIntD parses str as an int, returning def when it is blank or malformed.
func ToIntD(str string, def int) int {
	str = strings.TrimSpace(str)
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	return def
}

// ToBool accepts "true"/"false", "1"/"0" and "on" (HTML checkbox). Anything else is false.
func ToBool(s string) bool {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "on") {
		return true
	}

	v, _ := strconv.ParseBool(s)
	return v
}
