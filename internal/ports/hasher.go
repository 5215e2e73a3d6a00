package ports

import "cpk-tools/internal/types"

// FileHasherPort digests files for the dependency manifest.
type FileHasherPort interface {
	HashFile(path string) (types.FileHash, error)
}
