package main

import (
	"regexp"
	"strings"
)

var createObjectRe = regexp.MustCompile(`(?i)^CREATE\s+(?:UNIQUE\s+)?(?:NULL_FILTERED\s+)?(TABLE|INDEX)\s+` + "`?" + `([A-Za-z_][A-Za-z0-9_]*)`)

func splitDDLStatements(content string) []string {
	// Remove comments and empty lines
	lines := strings.Split(content, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	content = strings.Join(cleaned, "\n")

	// Split by semicolon
	statements := strings.Split(content, ";")
	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}

// createdObject returns "table:<name>" or "index:<name>" for CREATE
// statements and "" for anything else.
func createdObject(stmt string) string {
	m := createObjectRe.FindStringSubmatch(strings.TrimSpace(stmt))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1]) + ":" + strings.ToLower(m[2])
}

func existingObjects(ddl []string) map[string]bool {
	out := make(map[string]bool, len(ddl))
	for _, stmt := range ddl {
		if name := createdObject(stmt); name != "" {
			out[name] = true
		}
	}
	return out
}

// pendingStatements drops CREATE statements for objects that already exist so
// a migration directory can be re-applied.
func pendingStatements(statements []string, existing map[string]bool) []string {
	var out []string
	for _, stmt := range statements {
		if name := createdObject(stmt); name != "" && existing[name] {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
