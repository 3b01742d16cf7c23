package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Transfer CFT reports versions such as "3.10.2206", sometimes with a leading
// "v" and without a patch level.
const pattern = `^v?(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)(\.(0|[1-9][0-9]*))?$`

var re = regexp.MustCompile(pattern)

var ErrParse = errors.New("could not parse provided string into semantic version")

type Comparison int

const (
	CompareEqual Comparison = iota
	CompareOldMajor
	CompareNewMajor
	CompareOldMinor
	CompareNewMinor
	CompareOldPatch
	CompareNewPatch
)

type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// Parse parses the the provided string into a semver representation.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if !re.MatchString(s) {
		return Version{}, ErrParse
	}
	split := strings.Split(strings.TrimPrefix(s, "v"), ".")
	ver := Version{}
	var err error
	ver.Major, err = strconv.Atoi(split[0])
	if err != nil {
		return Version{}, fmt.Errorf("parsing Major to int: %w", err)
	}
	ver.Minor, err = strconv.Atoi(split[1])
	if err != nil {
		return Version{}, fmt.Errorf("parsing Minor to int: %w", err)
	}
	if len(split) == 3 {
		ver.Patch, err = strconv.Atoi(split[2])
		if err != nil {
			return Version{}, fmt.Errorf("parsing Patch to int: %w", err)
		}
	}
	return ver, nil
}

// String returns a string representation of the version.
func (sv Version) String() string {
	return fmt.Sprintf("%d.%d.%d", sv.Major, sv.Minor, sv.Patch)
}

// Compare compares the version against the provided oracle.
func (sv Version) Compare(oracle Version) Comparison {
	switch {
	case sv.Major < oracle.Major:
		return CompareOldMajor
	case sv.Major > oracle.Major:
		return CompareNewMajor
	case sv.Minor < oracle.Minor:
		return CompareOldMinor
	case sv.Minor > oracle.Minor:
		return CompareNewMinor
	case sv.Patch < oracle.Patch:
		return CompareOldPatch
	case sv.Patch > oracle.Patch:
		return CompareNewPatch
	default:
		return CompareEqual
	}
}
