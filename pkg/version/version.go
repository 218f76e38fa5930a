package version

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Pattern is the git glob used to list release tags.
const Pattern = "v[0-9]*.[0-9]*.[0-9]*"

// Prefix precedes the numeric part of every release tag.
const Prefix = "v"

// ErrMalformedTag is wrapped by every tag parse failure.
var ErrMalformedTag = errors.New("malformed tag")

// Zero is the base version used when no release tag exists yet.
var Zero = Version{}

// releaseShape matches exactly v<major>.<minor>.<patch> without leading zeros.
// The git glob in Pattern is looser (it also admits v1.2.3-rc1 or v1.2.3.4).
var releaseShape = regexp.MustCompile(`^v(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)$`)

// Version is a release version tuple.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

type MalformedTagError struct {
	Tag    string
	Reason string
}

func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedTag, e.Tag, e.Reason)
}

func (e *MalformedTagError) Unwrap() error {
	return ErrMalformedTag
}

// Parse converts a tag such as "v1.2.3" into a Version. It requires the v
// prefix and exactly three non-negative integer components; pre-release and
// build metadata are rejected.
func Parse(tag string) (Version, error) {
	if !strings.HasPrefix(tag, Prefix) {
		return Version{}, &MalformedTagError{Tag: tag, Reason: "missing " + Prefix + " prefix"}
	}

	sv, err := semver.StrictNewVersion(strings.TrimPrefix(tag, Prefix))
	if err != nil {
		return Version{}, &MalformedTagError{Tag: tag, Reason: err.Error()}
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, &MalformedTagError{Tag: tag, Reason: "pre-release and build metadata are not supported"}
	}

	return Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch()}, nil
}

// Next returns the successor release: patch plus one, major and minor unchanged.
// A patch component at the uint64 limit has no successor.
func (v Version) Next() (Version, error) {
	if v.Patch == math.MaxUint64 {
		return Version{}, &MalformedTagError{Tag: v.String(), Reason: "patch component cannot be incremented"}
	}
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
}

// String returns the tag form, e.g. "v1.2.3".
func (v Version) String() string {
	return fmt.Sprintf("%s%d.%d.%d", Prefix, v.Major, v.Minor, v.Patch)
}

func (v Version) semver() *semver.Version {
	return semver.New(v.Major, v.Minor, v.Patch, "", "")
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.semver().LessThan(o.semver())
}

// IsRelease reports whether tag has the exact v<major>.<minor>.<patch> shape.
func IsRelease(tag string) bool {
	return releaseShape.MatchString(tag)
}

// Sort returns the release-shaped tags in descending version order. Tags of
// any other shape are dropped. A release-shaped tag that still fails to parse
// (a component overflowing uint64) is reported as malformed.
func Sort(tags []string) ([]string, error) {
	type entry struct {
		tag string
		v   Version
	}

	var entries []entry
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if !IsRelease(tag) {
			continue
		}
		v, err := Parse(tag)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{tag: tag, v: v})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[j].v.Less(entries[i].v)
	})

	sorted := make([]string, len(entries))
	for i, e := range entries {
		sorted[i] = e.tag
	}
	return sorted, nil
}

// Latest returns the highest release in tags. When none exists it returns
// Zero and false.
func Latest(tags []string) (Version, bool, error) {
	sorted, err := Sort(tags)
	if err != nil {
		return Version{}, false, err
	}
	if len(sorted) == 0 {
		return Zero, false, nil
	}

	v, err := Parse(sorted[0])
	if err != nil {
		return Version{}, false, err
	}
	return v, true, nil
}
