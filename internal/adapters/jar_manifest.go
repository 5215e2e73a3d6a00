package adapters

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/types"
)

const manifestPath = "META-INF/MANIFEST.MF"

// readManifest parses the main section of a jar manifest. Continuation
// lines start with a single space and are joined onto the previous line.
func readManifest(r io.Reader) (map[string]string, error) {
	headers := map[string]string{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var name string
	var value strings.Builder
	flush := func() {
		if name != "" {
			headers[name] = value.String()
		}
		name = ""
		value.Reset()
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			// The main section ends at the first blank line.
			break
		}
		if strings.HasPrefix(line, " ") {
			if name == "" {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("manifest continuation line without a header")
			}
			value.WriteString(line[1:])
			continue
		}
		flush()
		idx := strings.Index(line, ":")
		if idx <= 0 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid manifest line: " + line)
		}
		name = line[:idx]
		value.WriteString(strings.TrimPrefix(line[idx+1:], " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read manifest").
			WithCause(err)
	}
	flush()
	return headers, nil
}

// parseHeaderClauses parses an OSGi header such as Import-Package. A
// clause may name several packages sharing the same parameters.
func parseHeaderClauses(value string) []types.PackageClause {
	var out []types.PackageClause
	for _, clause := range splitQuoted(value, ',') {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		var names []string
		attributes := map[string]string{}
		directives := map[string]string{}
		for _, part := range splitQuoted(clause, ';') {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if idx := strings.Index(part, ":="); idx > 0 {
				directives[strings.TrimSpace(part[:idx])] = unquote(part[idx+2:])
				continue
			}
			if idx := strings.Index(part, "="); idx > 0 {
				key := strings.TrimSpace(part[:idx])
				if typed := strings.Index(key, ":"); typed > 0 {
					key = key[:typed]
				}
				attributes[key] = unquote(part[idx+1:])
				continue
			}
			names = append(names, part)
		}
		for _, name := range names {
			out = append(out, types.PackageClause{
				Name:       name,
				Attributes: copyMap(attributes),
				Directives: copyMap(directives),
			})
		}
	}
	return out
}

// parseNameList reads headers that are plain comma separated names, such
// as Private-Package or Bundle-ClassPath.
func parseNameList(value string) []string {
	var out []string
	for _, clause := range parseHeaderClauses(value) {
		out = append(out, clause.Name)
	}
	return out
}

func splitQuoted(value string, sep rune) []string {
	var out []string
	var current strings.Builder
	quoted := false
	for _, ch := range value {
		switch {
		case ch == '"':
			quoted = !quoted
			current.WriteRune(ch)
		case ch == sep && !quoted:
			out = append(out, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	out = append(out, current.String())
	return out
}

func unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	return value
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var (
	eeNamePattern    = regexp.MustCompile(`osgi\.ee=([^)]+)`)
	eeVersionPattern = regexp.MustCompile(`version(?::Version)?=([0-9.]+)`)
)

// requiredExecutionEnvironments lists the environments named by a
// Require-Capability header in the form accepted by
// core.ParseExecutionEnvironment.
func requiredExecutionEnvironments(value string) []string {
	var out []string
	for _, clause := range parseHeaderClauses(value) {
		if clause.Name != "osgi.ee" {
			continue
		}
		filter := clause.Directives["filter"]
		name := eeNamePattern.FindStringSubmatch(filter)
		if name == nil {
			continue
		}
		env := strings.TrimSpace(name[1])
		if version := eeVersionPattern.FindStringSubmatch(filter); version != nil {
			env += "-" + version[1]
		}
		out = append(out, env)
	}
	sort.Strings(out)
	return out
}
