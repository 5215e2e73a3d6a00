package adapters

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

const sha256Algorithm = "SHA-256"

// FileHasherAdapter computes base64 encoded SHA-256 digests.
type FileHasherAdapter struct{}

func NewFileHasherAdapter() FileHasherAdapter {
	return FileHasherAdapter{}
}

func (FileHasherAdapter) HashFile(path string) (types.FileHash, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.FileHash{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("cannot open " + path).
			WithCause(err)
	}
	defer file.Close()
	digest := sha256.New()
	if _, err := io.Copy(digest, file); err != nil {
		return types.FileHash{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("cannot hash " + path).
			WithCause(err)
	}
	return types.FileHash{
		Algorithm: sha256Algorithm,
		FileHash:  base64.StdEncoding.EncodeToString(digest.Sum(nil)),
	}, nil
}

var _ ports.FileHasherPort = FileHasherAdapter{}
