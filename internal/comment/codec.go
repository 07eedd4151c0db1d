package comment

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	slugPattern    = regexp.MustCompile(regexp.QuoteMeta(IdentityMarker) + `\s+([A-Za-z0-9]{6})\b`)
	versionPattern = regexp.MustCompile(regexp.QuoteMeta(IdentityMarker) + `\s+[A-Za-z0-9]{6}\s+v(\d+)\.(\d+)\b`)
)

// ExtractSlug returns the slug from the identity marker line in text. It also
// accepts the older marker form that carries no version, so such blocks keep
// their slug and restart at v1.0.
func ExtractSlug(text string) (string, bool) {
	match := slugPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ExtractVersion returns the version from the identity marker line in text.
// Legacy marker lines without a version report false.
func ExtractVersion(text string) (Version, bool) {
	match := versionPattern.FindStringSubmatch(text)
	if match == nil {
		return Version{}, false
	}
	major, err := strconv.Atoi(match[1])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return Version{}, false
	}
	return Version{Major: major, Minor: minor}, true
}

// NextVersion bumps the minor component of prior, or starts at v1.0.
func NextVersion(prior *Version) Version {
	if prior == nil {
		return Version{Major: 1, Minor: 0}
	}
	return Version{Major: prior.Major, Minor: prior.Minor + 1}
}

// FreshSlug draws SlugLength characters uniformly from the 62-symbol
// alphanumeric alphabet. Uniqueness is not checked.
func FreshSlug(r *rand.Rand) string {
	var b strings.Builder
	b.Grow(SlugLength)
	for i := 0; i < SlugLength; i++ {
		b.WriteByte(slugAlphabet[r.IntN(len(slugAlphabet))])
	}
	return b.String()
}

// Identity resolves the slug and version for a regenerated block from the
// text of the block it replaces. An empty prior mints a fresh slug at v1.0.
func Identity(prior string, r *rand.Rand) (string, Version) {
	slug, ok := ExtractSlug(prior)
	if !ok {
		return FreshSlug(r), NextVersion(nil)
	}
	if v, ok := ExtractVersion(prior); ok {
		return slug, NextVersion(&v)
	}
	return slug, NextVersion(nil)
}
