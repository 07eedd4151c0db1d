// Package comment models generated documentation blocks and converts them
// to and from their block-comment text form.
package comment

import (
	"fmt"
	"strings"
	"time"
)

const (
	// IdentityMarker prefixes the metadata line of every generated block.
	IdentityMarker = "@generated"

	// TimestampLayout is the fixed-width layout of the "Generated on" field.
	TimestampLayout = "2006-01-02 15:04:05"

	// SlugLength is the number of alphanumeric characters in a slug.
	SlugLength = 6
)

// Param documents a single parameter.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
}

// Returns documents the value produced by a function.
type Returns struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Version is the major.minor revision carried in a block's metadata line.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Block is a fully resolved documentation comment ready to render.
type Block struct {
	Description    string
	Parameters     []Param
	Returns        *Returns
	IsAsync        bool
	Slug           string
	Version        Version
	GeneratedAt    time.Time
	GeneratorLabel string
}

// IsVoidType reports whether a declared return type produces no value.
func IsVoidType(returnType string) bool {
	switch strings.ToLower(strings.Join(strings.Fields(returnType), "")) {
	case "void", "promise<void>", "never", "undefined":
		return true
	default:
		return false
	}
}

// HasNonVoidReturn reports whether a declared return type is present and
// not void-like.
func HasNonVoidReturn(returnType string) bool {
	returnType = strings.TrimSpace(returnType)
	return returnType != "" && !IsVoidType(returnType)
}

// IsCommentLine reports whether a trimmed line opens or continues a block comment.
func IsCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*")
}
