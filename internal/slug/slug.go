// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from product names.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// separators matches every run of characters that isn't a lowercase letter
// or digit.
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given string.
// Example: "Pearl & Crystal Drop Earrings" → "pearl-crystal-drop-earrings"
func Generate(s string) string {
	result := separators.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(result, "-")
}

// Unique returns base, or base with the smallest numeric suffix ("-2",
// "-3", ...) for which taken reports false.
func Unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
