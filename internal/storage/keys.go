package storage

import (
	"regexp"
	"strings"
)

// Root is the top-level folder for all drawing uploads.
const Root = "DXF"

type ObjectKey struct {
	Prefix    string // product family, sanitized into a folder; must not sanitize to empty
	Thickness string // sanitized into a folder
	Filename  string // kept verbatim
}

// Key returns DXF/<prefix>/<thickness>/<filename>.
// The thickness folder is left out when it sanitizes to nothing.
func (k ObjectKey) Key() string {
	parts := []string{Root, Sanitize(k.Prefix)}
	if thk := Sanitize(k.Thickness); thk != "" {
		parts = append(parts, thk)
	}
	parts = append(parts, k.Filename)
	return strings.Join(parts, "/")
}

var (
	whitespace  = regexp.MustCompile(`[\s\p{Z}]+`)
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	underscores = regexp.MustCompile(`_+`)
	hyphens     = regexp.MustCompile(`-+`)
)

// Sanitize turns free text into a folder name made of [A-Za-z0-9_-] only,
// with no repeated separators and none at either end. The result may be empty.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = unsafeChars.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "_-")
}
