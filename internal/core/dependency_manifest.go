package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cpk-tools/internal/policies"
	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

// CordaAPIType marks manifest entries for CPKs published by the platform.
const CordaAPIType = "corda-api"

// DependencyManifestBuilder describes the CPKs a CPK depends on so the
// runtime can check it is installed next to the same ones.
type DependencyManifestBuilder struct {
	Identities ports.ClasspathScannerPort
	Hasher     ports.FileHasherPort
}

func NewDependencyManifestBuilder(identities ports.ClasspathScannerPort, hasher ports.FileHasherPort) DependencyManifestBuilder {
	return DependencyManifestBuilder{Identities: identities, Hasher: hasher}
}

// Build trusts CPKs of the same build by signer and every other CPK by
// the hash of its file.
func (b DependencyManifestBuilder) Build(ctx context.Context, set types.ClassifiedDependencySet) (types.DependencyManifest, error) {
	manifest := types.DependencyManifest{
		FormatVersion: types.DependencyManifestFormatVersion,
		Dependencies:  []types.DependencyManifestEntry{},
	}
	for _, artifact := range set.ProjectCordapps.Sorted() {
		entry, err := b.entry(artifact)
		if err != nil {
			return types.DependencyManifest{}, err
		}
		entry.VerifySameSignerAsMe = true
		manifest.Dependencies = append(manifest.Dependencies, entry)
	}
	for _, artifact := range set.RemoteCordapps.Sorted() {
		entry, err := b.entry(artifact)
		if err != nil {
			return types.DependencyManifest{}, err
		}
		hash, err := b.Hasher.HashFile(artifact.File)
		if err != nil {
			return types.DependencyManifest{}, err
		}
		entry.VerifyFileHash = &hash
		manifest.Dependencies = append(manifest.Dependencies, entry)
	}
	sort.SliceStable(manifest.Dependencies, func(i, j int) bool {
		left, right := manifest.Dependencies[i], manifest.Dependencies[j]
		if left.Name != right.Name {
			return left.Name < right.Name
		}
		return left.Version < right.Version
	})
	log.Ctx(ctx).Debug().Int("dependencies", len(manifest.Dependencies)).Msg("dependency manifest built")
	return manifest, nil
}

func (b DependencyManifestBuilder) entry(artifact types.ResolvedArtifact) (types.DependencyManifestEntry, error) {
	identity, err := b.Identities.Identity(artifact.File)
	if err != nil {
		return types.DependencyManifestEntry{}, err
	}
	if identity.SymbolicName == "" || identity.Version == "" {
		return types.DependencyManifestEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("CorDapp %s has no Bundle-SymbolicName or Bundle-Version", artifact.File))
	}
	entry := types.DependencyManifestEntry{
		Name:    identity.SymbolicName,
		Version: identity.Version,
	}
	if artifact.Coordinate.Group == policies.CordaAPIGroup {
		entry.Type = CordaAPIType
	}
	return entry, nil
}
