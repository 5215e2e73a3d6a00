package core

import (
	"fmt"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Version is an OSGi version: major.minor.micro.qualifier. The numeric
// part orders like semantic versions; the qualifier orders lexically and
// an empty qualifier sorts first.
type Version struct {
	numeric   *mm.Version
	qualifier string
}

// EmptyVersion is the implied version of exports without one.
var EmptyVersion = Version{numeric: mm.New(0, 0, 0, "", "")}

func ParseVersion(raw string) (Version, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return EmptyVersion, nil
	}
	parts := strings.SplitN(value, ".", 4)
	var numbers [3]uint64
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.ParseUint(parts[i], 10, 64)
		if err != nil {
			return Version{}, invalidVersion(raw, err)
		}
		numbers[i] = n
	}
	qualifier := ""
	if len(parts) == 4 {
		qualifier = parts[3]
		if !validQualifier(qualifier) {
			return Version{}, invalidVersion(raw, nil)
		}
	}
	return Version{
		numeric:   mm.New(numbers[0], numbers[1], numbers[2], "", ""),
		qualifier: qualifier,
	}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) Compare(other Version) int {
	left, right := v.numericOrZero(), other.numericOrZero()
	if c := left.Compare(right); c != 0 {
		return c
	}
	return strings.Compare(v.qualifier, other.qualifier)
}

func (v Version) String() string {
	n := v.numericOrZero()
	out := fmt.Sprintf("%d.%d.%d", n.Major(), n.Minor(), n.Patch())
	if v.qualifier != "" {
		out += "." + v.qualifier
	}
	return out
}

func (v Version) numericOrZero() *mm.Version {
	if v.numeric == nil {
		return mm.New(0, 0, 0, "", "")
	}
	return v.numeric
}

func validQualifier(q string) bool {
	if q == "" {
		return false
	}
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func invalidVersion(raw string, cause error) error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid OSGi version: %q", raw))
	if cause != nil {
		return b.WithCause(cause)
	}
	return b
}

// VersionRange is an OSGi version range such as "[1.0,2.0)". A bare
// version means "at least" that version.
type VersionRange struct {
	Left        Version
	LeftClosed  bool
	Right       *Version
	RightClosed bool
	raw         string
}

func ParseVersionRange(raw string) (VersionRange, error) {
	value := strings.Trim(strings.TrimSpace(raw), `"`)
	if value == "" {
		return VersionRange{Left: EmptyVersion, LeftClosed: true, raw: "0.0.0"}, nil
	}
	first := value[0]
	if first != '[' && first != '(' {
		left, err := ParseVersion(value)
		if err != nil {
			return VersionRange{}, err
		}
		return VersionRange{Left: left, LeftClosed: true, raw: value}, nil
	}
	last := value[len(value)-1]
	if last != ']' && last != ')' {
		return VersionRange{}, invalidRange(raw)
	}
	bounds := strings.Split(value[1:len(value)-1], ",")
	if len(bounds) != 2 {
		return VersionRange{}, invalidRange(raw)
	}
	left, err := ParseVersion(bounds[0])
	if err != nil {
		return VersionRange{}, err
	}
	right, err := ParseVersion(bounds[1])
	if err != nil {
		return VersionRange{}, err
	}
	r := VersionRange{
		Left:        left,
		LeftClosed:  first == '[',
		Right:       &right,
		RightClosed: last == ']',
		raw:         value,
	}
	if r.Left.Compare(right) > 0 {
		return VersionRange{}, invalidRange(raw)
	}
	return r, nil
}

func (r VersionRange) Includes(v Version) bool {
	c := v.Compare(r.Left)
	if c < 0 || (c == 0 && !r.LeftClosed) {
		return false
	}
	if r.Right == nil {
		return true
	}
	c = v.Compare(*r.Right)
	return c < 0 || (c == 0 && r.RightClosed)
}

func (r VersionRange) String() string {
	return r.raw
}

func invalidRange(raw string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid OSGi version range: %q", raw))
}
