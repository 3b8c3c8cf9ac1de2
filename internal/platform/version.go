package platform

import (
	"strings"
)

// Version is a platform release line. Values are declared in ascending
// chronological order so capability checks can compare with >=.
type Version int

const (
	V1_0 Version = iota
	V1_1
	V2_0
	V2_1
	V2_2
	V3_0
	V3_1
	V3_2
	V3_3
	V3_4
	V3_5
	V3_6
	V3_7
	V4_0
)

var versionNames = []string{
	V1_0: "1.0",
	V1_1: "1.1",
	V2_0: "2.0",
	V2_1: "2.1",
	V2_2: "2.2",
	V3_0: "3.0",
	V3_1: "3.1",
	V3_2: "3.2",
	V3_3: "3.3",
	V3_4: "3.4",
	V3_5: "3.5",
	V3_6: "3.6",
	V3_7: "3.7",
	V4_0: "4.0",
}

// Versions returns every known version, oldest first
func Versions() []Version {
	all := make([]Version, len(versionNames))
	for i := range versionNames {
		all[i] = Version(i)
	}
	return all
}

// Latest is the newest known version
const Latest = V4_0

func (v Version) String() string {
	if v < 0 || int(v) >= len(versionNames) {
		return "unknown"
	}
	return "v" + versionNames[v]
}

// Major returns the major release number
func (v Version) Major() string {
	if v < 0 || int(v) >= len(versionNames) {
		return ""
	}
	major, _, _ := strings.Cut(versionNames[v], ".")
	return major
}

// ParseVersion maps a pinned version or a constraint string such as
// "v3.5.12", "^3.0" or "2.*" onto a known Version.
func ParseVersion(s string) (Version, bool) {
	s = normalizeVersion(s)
	if s == "" {
		return 0, false
	}

	// Exact release line: "major.minor." is a prefix of "version."
	probe := s + "."
	for i, name := range versionNames {
		if strings.HasPrefix(probe, name+".") {
			return Version(i), true
		}
	}

	// Major only ("3", "3.*", "3.x"): the lowest release of that major
	major, rest, _ := strings.Cut(s, ".")
	if rest == "" || rest == "*" || rest == "x" || strings.HasPrefix(rest, "*") || strings.HasPrefix(rest, "x") {
		for i := range versionNames {
			if Version(i).Major() == major {
				return Version(i), true
			}
		}
	}
	return 0, false
}

// normalizeVersion strips constraint operators and keeps the first alternative
func normalizeVersion(s string) string {
	s = strings.TrimSpace(s)
	if alt, _, found := strings.Cut(s, "||"); found {
		s = strings.TrimSpace(alt)
	}
	if first, _, found := strings.Cut(s, " "); found {
		s = first
	}
	if first, _, found := strings.Cut(s, ","); found {
		s = first
	}
	s = strings.TrimLeft(s, "vV^~>=< ")
	return strings.TrimSpace(s)
}
