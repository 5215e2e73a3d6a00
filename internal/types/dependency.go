package types

import "fmt"

type DependencyKind string

const (
	DependencyKindModule  DependencyKind = "module"
	DependencyKindProject DependencyKind = "project"
)

// Dependency is a declared dependency of a configuration. It is a value
// type: callers that need a different transitivity take a copy with
// WithTransitive instead of mutating a shared declaration.
type Dependency struct {
	Kind       DependencyKind
	Coordinate Coordinate
	Project    string
	Classifier string
	Transitive bool
	Platform   bool
}

func ModuleDependency(group string, name string, version string) Dependency {
	return Dependency{
		Kind:       DependencyKindModule,
		Coordinate: Coordinate{Group: group, Name: name, Version: version},
		Transitive: true,
	}
}

func ProjectDependency(path string) Dependency {
	return Dependency{
		Kind:       DependencyKindProject,
		Project:    path,
		Transitive: true,
	}
}

func (d Dependency) IsProject() bool {
	return d.Kind == DependencyKindProject
}

func (d Dependency) WithTransitive(transitive bool) Dependency {
	d.Transitive = transitive
	return d
}

func (d Dependency) WithVersion(version string) Dependency {
	d.Coordinate.Version = version
	return d
}

// Key is the declared identity used for de-duplication.
func (d Dependency) Key() string {
	if d.IsProject() {
		return fmt.Sprintf("project(%s)", d.Project)
	}
	key := d.Coordinate.String()
	if d.Classifier != "" {
		key += "@" + d.Classifier
	}
	if d.Platform {
		key = "platform(" + key + ")"
	}
	return key
}

func (d Dependency) String() string {
	return d.Key()
}

// CordappDependencies is the outcome of walking the cordapp
// configurations and their CPK marker graphs.
type CordappDependencies struct {
	Cordapps []Dependency
	Provided []Dependency
}
