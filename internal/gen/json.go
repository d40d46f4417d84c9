package gen

import "strings"

// StripCodeFences removes markdown code fence wrapping from a string.
// Models occasionally fence their output even in JSON mode, so responses
// are cleaned defensively before parsing.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```") {
		// Skip the opening fence line (```json, ``` etc).
		firstNewline := strings.Index(trimmed, "\n")
		if firstNewline != -1 {
			lastFence := strings.LastIndex(trimmed, "```")
			if lastFence > firstNewline {
				return strings.TrimSpace(trimmed[firstNewline+1 : lastFence])
			}
		}
	}

	return s
}

// ExtractJSON finds the first JSON object or array in a response, tolerating
// prose before and after it. Returns "" when no balanced value is present.
func ExtractJSON(response string) string {
	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return ""
	}

	open := response[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}

	return ""
}

// CleanResponse strips fences and extracts the embedded JSON value in one
// step; the common path for model responses.
func CleanResponse(raw string) string {
	return ExtractJSON(StripCodeFences(raw))
}
