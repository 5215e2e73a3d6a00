package core

import (
	"sort"
	"strconv"
	"strings"
)

// javaSE8Packages are the non-java.* packages exported by the system
// bundle on a Java SE 8 runtime.
var javaSE8Packages = []string{
	"javax.annotation",
	"javax.annotation.processing",
	"javax.crypto",
	"javax.crypto.interfaces",
	"javax.crypto.spec",
	"javax.management",
	"javax.management.openmbean",
	"javax.naming",
	"javax.net",
	"javax.net.ssl",
	"javax.script",
	"javax.security.auth",
	"javax.security.auth.callback",
	"javax.security.auth.login",
	"javax.security.auth.x500",
	"javax.security.cert",
	"javax.sql",
	"javax.tools",
	"javax.xml",
	"javax.xml.bind",
	"javax.xml.bind.annotation",
	"javax.xml.datatype",
	"javax.xml.namespace",
	"javax.xml.parsers",
	"javax.xml.stream",
	"javax.xml.transform",
	"javax.xml.transform.dom",
	"javax.xml.transform.stream",
	"javax.xml.validation",
	"javax.xml.xpath",
	"org.ietf.jgss",
	"org.w3c.dom",
	"org.xml.sax",
	"org.xml.sax.ext",
	"org.xml.sax.helpers",
}

// removedAfterJava8 left the JDK with the Java EE modules in Java 11.
var removedAfterJava8 = map[string]struct{}{
	"javax.annotation":          {},
	"javax.xml.bind":            {},
	"javax.xml.bind.annotation": {},
}

// ExecutionEnvironment is a Java SE baseline, identified by its feature
// release (8, 11, 17, ...).
type ExecutionEnvironment struct {
	Name    string
	Release int
}

// ParseExecutionEnvironment accepts "JavaSE-1.8", "JavaSE-11" and
// "JavaSE/11" style names.
func ParseExecutionEnvironment(name string) (ExecutionEnvironment, bool) {
	value := strings.TrimSpace(name)
	if !strings.HasPrefix(value, "JavaSE") {
		return ExecutionEnvironment{}, false
	}
	version := strings.TrimLeft(strings.TrimPrefix(value, "JavaSE"), "-/")
	version = strings.TrimPrefix(version, "1.")
	if dot := strings.Index(version, "."); dot >= 0 {
		version = version[:dot]
	}
	release, err := strconv.Atoi(version)
	if err != nil || release <= 0 {
		return ExecutionEnvironment{}, false
	}
	return ExecutionEnvironment{Name: value, Release: release}, true
}

// Packages lists the packages the runtime supplies for this baseline.
// The zero value only supplies java.*.
func (e ExecutionEnvironment) Packages() []string {
	if e.Release == 0 {
		return nil
	}
	var out []string
	for _, pkg := range javaSE8Packages {
		if _, removed := removedAfterJava8[pkg]; removed && e.Release > 8 {
			continue
		}
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// Provides reports whether pkg is satisfied by the JDK itself.
func (e ExecutionEnvironment) Provides(pkg string) bool {
	if pkg == "java" || strings.HasPrefix(pkg, "java.") {
		return true
	}
	for _, candidate := range e.Packages() {
		if candidate == pkg {
			return true
		}
	}
	return false
}
