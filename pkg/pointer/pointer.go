// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer helps apply partial updates, where a nil field means "unchanged".
package pointer

// Fallback returns *p, or current when p is nil.
func Fallback[T any](p *T, current T) T {
	if p == nil {
		return current
	}
	return *p
}
