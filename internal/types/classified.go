package types

import "sort"

// ArtifactSet is a set of resolved artifacts keyed by file path.
type ArtifactSet map[string]ResolvedArtifact

func NewArtifactSet(artifacts ...ResolvedArtifact) ArtifactSet {
	set := ArtifactSet{}
	for _, artifact := range artifacts {
		set.Add(artifact)
	}
	return set
}

func (s ArtifactSet) Add(artifact ResolvedArtifact) bool {
	if _, ok := s[artifact.File]; ok {
		return false
	}
	s[artifact.File] = artifact
	return true
}

func (s ArtifactSet) Contains(file string) bool {
	_, ok := s[file]
	return ok
}

// Minus returns the artifacts of s that are in none of the others.
func (s ArtifactSet) Minus(others ...ArtifactSet) ArtifactSet {
	out := ArtifactSet{}
	for file, artifact := range s {
		excluded := false
		for _, other := range others {
			if other.Contains(file) {
				excluded = true
				break
			}
		}
		if !excluded {
			out[file] = artifact
		}
	}
	return out
}

func (s ArtifactSet) Union(others ...ArtifactSet) ArtifactSet {
	out := ArtifactSet{}
	for file, artifact := range s {
		out[file] = artifact
	}
	for _, other := range others {
		for file, artifact := range other {
			if _, ok := out[file]; !ok {
				out[file] = artifact
			}
		}
	}
	return out
}

func (s ArtifactSet) Files() []string {
	files := make([]string, 0, len(s))
	for file := range s {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Sorted returns the artifacts ordered by file path.
func (s ArtifactSet) Sorted() []ResolvedArtifact {
	out := make([]ResolvedArtifact, 0, len(s))
	for _, file := range s.Files() {
		out = append(out, s[file])
	}
	return out
}

// ClassifiedDependencySet partitions the files of a CPK build into
// disjoint destinations.
type ClassifiedDependencySet struct {
	Libraries       ArtifactSet
	EmbeddedJars    ArtifactSet
	ProvidedJars    ArtifactSet
	ProjectCordapps ArtifactSet
	RemoteCordapps  ArtifactSet
}

func NewClassifiedDependencySet() ClassifiedDependencySet {
	return ClassifiedDependencySet{
		Libraries:       ArtifactSet{},
		EmbeddedJars:    ArtifactSet{},
		ProvidedJars:    ArtifactSet{},
		ProjectCordapps: ArtifactSet{},
		RemoteCordapps:  ArtifactSet{},
	}
}

func (c ClassifiedDependencySet) Cordapps() ArtifactSet {
	return c.ProjectCordapps.Union(c.RemoteCordapps)
}

// Bucket returns the set written to the given report bucket.
func (c ClassifiedDependencySet) Bucket(bucket Bucket) ArtifactSet {
	switch bucket {
	case BucketLibraries:
		return c.Libraries
	case BucketEmbedded:
		return c.EmbeddedJars
	case BucketProvided:
		return c.ProvidedJars
	case BucketProjectCordapps:
		return c.ProjectCordapps
	case BucketRemoteCordapps:
		return c.RemoteCordapps
	default:
		return nil
	}
}
