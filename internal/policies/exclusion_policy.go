package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/types"
)

// DefaultCordaExcludes are the modules the Corda runtime always supplies.
// A CPK must never package them.
var DefaultCordaExcludes = []string{
	"org.jetbrains.kotlin:*",
	"net.corda.kotlin:*",
	"org.osgi:*",
	"org.slf4j:slf4j-api",
	"org.slf4j:jcl-over-slf4j",
	"commons-logging:commons-logging",
	"co.paralleluniverse:quasar-core",
	"co.paralleluniverse:quasar-core-osgi",
}

// ExclusionPolicy matches modules against a table of group:name rules.
// The name may be "*" for the whole group or end in "*" for a prefix.
type ExclusionPolicy struct {
	Rules         []string
	exact         map[string]map[string]struct{}
	prefixByGroup map[string][]string
	wildcard      map[string]struct{}
}

func NewExclusionPolicy(rules []string) (ExclusionPolicy, error) {
	policy := ExclusionPolicy{Rules: append([]string(nil), rules...)}
	if err := policy.compile(); err != nil {
		return ExclusionPolicy{}, err
	}
	return policy, nil
}

// NewDefaultExclusionPolicy compiles DefaultCordaExcludes.
func NewDefaultExclusionPolicy() ExclusionPolicy {
	policy, err := NewExclusionPolicy(DefaultCordaExcludes)
	if err != nil {
		panic(err)
	}
	return policy
}

// IsCordaProvided reports whether group:name is supplied by the runtime.
func (p ExclusionPolicy) IsCordaProvided(group string, name string) bool {
	if _, ok := p.wildcard[group]; ok {
		return true
	}
	if names, ok := p.exact[group]; ok {
		if _, found := names[name]; found {
			return true
		}
	}
	for _, prefix := range p.prefixByGroup[group] {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (p *ExclusionPolicy) compile() error {
	p.exact = map[string]map[string]struct{}{}
	p.prefixByGroup = map[string][]string{}
	p.wildcard = map[string]struct{}{}
	for _, rule := range p.Rules {
		group, name, kind, ok := parseRule(rule)
		if !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid exclusion rule: %q", rule))
		}
		switch kind {
		case patternWildcard:
			p.wildcard[group] = struct{}{}
		case patternPrefix:
			p.prefixByGroup[group] = append(p.prefixByGroup[group], name)
		case patternExact:
			if p.exact[group] == nil {
				p.exact[group] = map[string]struct{}{}
			}
			p.exact[group][name] = struct{}{}
		}
	}
	return nil
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternWildcard
	patternInvalid
)

func parseRule(rule string) (string, string, patternKind, bool) {
	parts := strings.Split(strings.TrimSpace(rule), ":")
	if len(parts) != 2 {
		return "", "", patternInvalid, false
	}
	group := strings.TrimSpace(parts[0])
	if group == "" {
		return "", "", patternInvalid, false
	}
	name, kind := parseNamePattern(parts[1])
	if kind == patternInvalid {
		return "", "", patternInvalid, false
	}
	return group, name, kind, true
}

func parseNamePattern(value string) (string, patternKind) {
	pattern := strings.TrimSpace(value)
	if pattern == "" {
		return "", patternInvalid
	}
	if pattern == "*" {
		return "", patternWildcard
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.TrimSuffix(pattern, "*"), patternPrefix
	}
	return pattern, patternExact
}

// Partition splits module dependencies into the runtime-provided ones and
// everything else. Project dependencies are never runtime-provided.
func (p ExclusionPolicy) Partition(deps []types.Dependency) ([]types.Dependency, []types.Dependency) {
	var provided, rest []types.Dependency
	for _, dep := range deps {
		if !dep.IsProject() && p.IsCordaProvided(dep.Coordinate.Group, dep.Coordinate.Name) {
			provided = append(provided, dep)
			continue
		}
		rest = append(rest, dep)
	}
	return provided, rest
}
