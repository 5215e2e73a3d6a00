package adapters

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

const (
	DefaultSBOMNamespace = "https://cpk-tools.dev/spdx"
	SBOMFile             = "cpk.sbom.json"
)

type SBOMWriterAdapter struct {
	NamespaceBase string
}

func NewSBOMWriterAdapter() SBOMWriterAdapter {
	return SBOMWriterAdapter{NamespaceBase: DefaultSBOMNamespace}
}

// WriteSBOM writes an SPDX document describing the CPK: the jars it
// packages, the CorDapps it depends on and the jars it expects the
// platform to provide.
func (a SBOMWriterAdapter) WriteSBOM(dir string, cpk types.Coordinate, createdAt string, set types.ClassifiedDependencySet) error {
	if strings.TrimSpace(dir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if strings.TrimSpace(cpk.Name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("CPK name is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	type spdxCreationInfo struct {
		Created  string   `json:"created"`
		Creators []string `json:"creators"`
	}
	type spdxPackage struct {
		SPDXID           string `json:"SPDXID"`
		Name             string `json:"name"`
		VersionInfo      string `json:"versionInfo"`
		PackageFileName  string `json:"packageFileName,omitempty"`
		DownloadLocation string `json:"downloadLocation"`
		LicenseConcluded string `json:"licenseConcluded"`
		LicenseDeclared  string `json:"licenseDeclared"`
		Supplier         string `json:"supplier"`
	}
	type spdxRelationship struct {
		SpdxElementID      string `json:"spdxElementId"`
		RelationshipType   string `json:"relationshipType"`
		RelatedSpdxElement string `json:"relatedSpdxElement"`
	}
	created := strings.TrimSpace(createdAt)
	if created == "" {
		created = time.Now().UTC().Format(time.RFC3339)
	}
	base := a.namespaceBase()
	rootID := spdxPackageID(cpk.Key(), cpk.Version)
	payload := struct {
		SPDXVersion       string             `json:"SPDXVersion"`
		DataLicense       string             `json:"dataLicense"`
		SPDXID            string             `json:"SPDXID"`
		Name              string             `json:"name"`
		DocumentNamespace string             `json:"documentNamespace"`
		CreationInfo      spdxCreationInfo   `json:"creationInfo"`
		Packages          []spdxPackage      `json:"packages"`
		Relationships     []spdxRelationship `json:"relationships"`
		DocumentDescribes []string           `json:"documentDescribes"`
	}{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXID:            "SPDXRef-DOCUMENT",
		Name:              fmt.Sprintf("cpk-tools %s", cpk),
		DocumentNamespace: fmt.Sprintf("%s/%s", base, strings.ReplaceAll(cpk.String(), ":", "/")),
		CreationInfo: spdxCreationInfo{
			Created:  created,
			Creators: []string{"Tool: cpk-tools"},
		},
		DocumentDescribes: []string{rootID},
	}
	payload.Packages = append(payload.Packages, spdxPackage{
		SPDXID:           rootID,
		Name:             cpk.Key(),
		VersionInfo:      cpk.Version,
		DownloadLocation: "NOASSERTION",
		LicenseConcluded: "NOASSERTION",
		LicenseDeclared:  "NOASSERTION",
		Supplier:         "NOASSERTION",
	})
	payload.Relationships = append(payload.Relationships, spdxRelationship{
		SpdxElementID:      "SPDXRef-DOCUMENT",
		RelationshipType:   "DESCRIBES",
		RelatedSpdxElement: rootID,
	})
	seen := map[string]struct{}{rootID: {}}
	add := func(artifacts types.ArtifactSet, relationship string, fromRoot bool) {
		for _, artifact := range artifacts.Sorted() {
			name := artifact.Coordinate.Key()
			if artifact.Coordinate.Name == "" {
				name = filepath.Base(artifact.File)
			}
			spdxID := spdxPackageID(name+"|"+artifact.File, artifact.Coordinate.Version)
			if _, ok := seen[spdxID]; !ok {
				seen[spdxID] = struct{}{}
				payload.Packages = append(payload.Packages, spdxPackage{
					SPDXID:           spdxID,
					Name:             name,
					VersionInfo:      artifact.Coordinate.Version,
					PackageFileName:  filepath.Base(artifact.File),
					DownloadLocation: "NOASSERTION",
					LicenseConcluded: "NOASSERTION",
					LicenseDeclared:  "NOASSERTION",
					Supplier:         "NOASSERTION",
				})
			}
			rel := spdxRelationship{SpdxElementID: rootID, RelationshipType: relationship, RelatedSpdxElement: spdxID}
			if !fromRoot {
				rel = spdxRelationship{SpdxElementID: spdxID, RelationshipType: relationship, RelatedSpdxElement: rootID}
			}
			payload.Relationships = append(payload.Relationships, rel)
		}
	}
	add(set.Libraries, "CONTAINS", true)
	add(set.EmbeddedJars, "CONTAINS", true)
	add(set.ProjectCordapps, "DEPENDS_ON", true)
	add(set.RemoteCordapps, "DEPENDS_ON", true)
	add(set.ProvidedJars, "PROVIDED_DEPENDENCY_OF", false)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal sbom payload").
			WithCause(err)
	}
	if err := os.WriteFile(filepath.Join(dir, SBOMFile), data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write sbom file").
			WithCause(err)
	}
	return nil
}

func (a SBOMWriterAdapter) namespaceBase() string {
	base := strings.TrimRight(strings.TrimSpace(a.NamespaceBase), "/")
	if base == "" {
		return DefaultSBOMNamespace
	}
	return base
}

func spdxPackageID(name string, version string) string {
	seed := fmt.Sprintf("%s@%s", name, version)
	hash := sha256.Sum256([]byte(seed))
	return "SPDXRef-Package-" + hex.EncodeToString(hash[:8])
}

var _ ports.SBOMPort = SBOMWriterAdapter{}
