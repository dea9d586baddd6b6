// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package frontend

import "strings"

// ParseJSDoc extracts the description lines of a /** */ comment.
//
// Leading asterisks and one following space are stripped from every line,
// trailing blanks are dropped, and parsing stops at the first block tag
// (@param, @returns, ...). Leading and trailing empty lines are removed.
// Anything that is not a JSDoc comment yields nil.
func ParseJSDoc(raw string) []string {
	if !strings.HasPrefix(raw, "/**") || !strings.HasSuffix(raw, "*/") || raw == "/**/" {
		return nil
	}
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimLeft(strings.TrimRight(line, " \t\r"), " \t")
		if rest, ok := strings.CutPrefix(line, "*"); ok {
			line = strings.TrimPrefix(rest, " ")
		}
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			break
		}
		lines = append(lines, line)
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}
