package ports

import "cpk-tools/internal/types"

// SBOMPort writes a software bill of materials for a calculated CPK.
type SBOMPort interface {
	WriteSBOM(dir string, cpk types.Coordinate, createdAt string, set types.ClassifiedDependencySet) error
}
