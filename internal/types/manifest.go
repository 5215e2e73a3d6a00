package types

const DependencyManifestFormatVersion = "2.0"

// DependencyManifest is the CPKDependencies.json document consumed by the
// runtime trust verification.
type DependencyManifest struct {
	FormatVersion string                    `json:"formatVersion"`
	Dependencies  []DependencyManifestEntry `json:"dependencies"`
}

// DependencyManifestEntry carries exactly one of VerifySameSignerAsMe or
// VerifyFileHash.
type DependencyManifestEntry struct {
	Name                 string    `json:"name"`
	Version              string    `json:"version"`
	Type                 string    `json:"type,omitempty"`
	VerifySameSignerAsMe bool      `json:"verifySameSignerAsMe,omitempty"`
	VerifyFileHash       *FileHash `json:"verifyFileHash,omitempty"`
}

type FileHash struct {
	Algorithm string `json:"algorithm"`
	FileHash  string `json:"fileHash"`
}

// JarIdentity is the bundle identity read from a jar manifest.
type JarIdentity struct {
	SymbolicName string
	Version      string
}
