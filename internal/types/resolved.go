package types

import "sort"

// ResolvedArtifact is a file produced by resolution. Project is set when
// the artifact is the output of a project in the same build.
type ResolvedArtifact struct {
	Coordinate    Coordinate
	File          string
	Classifier    string
	PackagingType string
	Project       bool
}

// ResolvedDependencyNode is one node of a resolved graph. The graph may
// contain diamonds and, in broken builds, cycles.
type ResolvedDependencyNode struct {
	Coordinate Coordinate
	Project    bool
	Platform   bool
	Artifacts  []ResolvedArtifact
	Children   []*ResolvedDependencyNode
}

type UnresolvedDependency struct {
	Dependency string
	Reason     string
}

// ResolvedConfiguration is the result of a single resolution request.
type ResolvedConfiguration struct {
	FirstLevel []*ResolvedDependencyNode
	Unresolved []UnresolvedDependency
}

func (c ResolvedConfiguration) HasErrors() bool {
	return len(c.Unresolved) > 0
}

// Nodes walks the graph breadth first and returns every reachable node
// exactly once.
func (c ResolvedConfiguration) Nodes() []*ResolvedDependencyNode {
	visited := map[*ResolvedDependencyNode]struct{}{}
	queue := append([]*ResolvedDependencyNode(nil), c.FirstLevel...)
	var out []*ResolvedDependencyNode
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == nil {
			continue
		}
		if _, seen := visited[node]; seen {
			continue
		}
		visited[node] = struct{}{}
		out = append(out, node)
		queue = append(queue, node.Children...)
	}
	return out
}

// Artifacts returns every artifact of the transitive closure, keyed once
// per file.
func (c ResolvedConfiguration) Artifacts() []ResolvedArtifact {
	seen := map[string]struct{}{}
	var out []ResolvedArtifact
	for _, node := range c.Nodes() {
		for _, artifact := range node.Artifacts {
			if _, ok := seen[artifact.File]; ok {
				continue
			}
			seen[artifact.File] = struct{}{}
			out = append(out, artifact)
		}
	}
	return out
}

func (c ResolvedConfiguration) Files() []string {
	var files []string
	for _, artifact := range c.Artifacts() {
		files = append(files, artifact.File)
	}
	sort.Strings(files)
	return files
}
