package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

type buildModelFile struct {
	Projects   []projectEntry `yaml:"projects"`
	Repository []moduleEntry  `yaml:"repository"`
}

type projectEntry struct {
	Path           string               `yaml:"path"`
	Group          string               `yaml:"group"`
	Name           string               `yaml:"name"`
	Version        string               `yaml:"version"`
	Artifact       string               `yaml:"artifact"`
	CordappName    string               `yaml:"cordapp_name,omitempty"`
	Configurations []configurationEntry `yaml:"configurations"`
}

type configurationEntry struct {
	Name         string            `yaml:"name"`
	Extends      []string          `yaml:"extends,omitempty"`
	Dependencies []dependencyEntry `yaml:"dependencies,omitempty"`
}

type moduleEntry struct {
	Coordinate   string            `yaml:"coordinate"`
	Artifacts    []artifactEntry   `yaml:"artifacts,omitempty"`
	Dependencies []dependencyEntry `yaml:"dependencies,omitempty"`
	Platform     bool              `yaml:"platform,omitempty"`
	Constraints  []string          `yaml:"constraints,omitempty"`
}

// dependencyEntry accepts "group:name:version", "project(:path)" or a
// mapping with notation/project and flags.
type dependencyEntry struct {
	Notation   string `yaml:"notation,omitempty"`
	Project    string `yaml:"project,omitempty"`
	Classifier string `yaml:"classifier,omitempty"`
	Transitive *bool  `yaml:"transitive,omitempty"`
	Platform   bool   `yaml:"platform,omitempty"`
}

func (d *dependencyEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		raw := strings.TrimSpace(value.Value)
		if strings.HasPrefix(raw, "project(") && strings.HasSuffix(raw, ")") {
			d.Project = strings.Trim(raw[len("project("):len(raw)-1], `"' `)
			return nil
		}
		d.Notation = raw
		return nil
	}
	type plain dependencyEntry
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*d = dependencyEntry(decoded)
	return nil
}

type artifactEntry struct {
	File       string `yaml:"file"`
	Classifier string `yaml:"classifier,omitempty"`
	Type       string `yaml:"type,omitempty"`
}

func (a *artifactEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a.File = strings.TrimSpace(value.Value)
		return nil
	}
	type plain artifactEntry
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*a = artifactEntry(decoded)
	return nil
}

// BuildModelFileAdapter loads a build model from YAML. Relative artifact
// paths are resolved against the directory of the model file.
type BuildModelFileAdapter struct{}

func NewBuildModelFileAdapter() BuildModelFileAdapter {
	return BuildModelFileAdapter{}
}

func (a BuildModelFileAdapter) Load(path string) (types.BuildModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BuildModel{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("build model file not found").
			WithCause(err)
	}
	var file buildModelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return types.BuildModel{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse build model yaml").
			WithCause(err)
	}
	baseDir := filepath.Dir(path)
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return convertBuildModel(file, baseDir)
}

func convertBuildModel(file buildModelFile, baseDir string) (types.BuildModel, error) {
	model := types.BuildModel{
		Projects:   map[string]types.Project{},
		Repository: map[string]types.RepositoryModule{},
	}
	for _, entry := range file.Projects {
		path := strings.TrimSpace(entry.Path)
		if path == "" {
			return types.BuildModel{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("project path is required")
		}
		if _, exists := model.Projects[path]; exists {
			return types.BuildModel{}, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("duplicate project %s", path))
		}
		project := types.Project{
			Path:           path,
			Coordinate:     types.Coordinate{Group: entry.Group, Name: entry.Name, Version: entry.Version},
			Artifact:       resolvePath(baseDir, entry.Artifact),
			CordappName:    entry.CordappName,
			Configurations: map[string]types.Configuration{},
		}
		for _, configEntry := range entry.Configurations {
			deps, err := convertDependencies(configEntry.Dependencies)
			if err != nil {
				return types.BuildModel{}, err
			}
			project.Configurations[configEntry.Name] = types.Configuration{
				Name:         configEntry.Name,
				Extends:      configEntry.Extends,
				Dependencies: deps,
			}
		}
		model.Projects[path] = project
	}
	for _, entry := range file.Repository {
		coordinate, ok := types.ParseCoordinate(entry.Coordinate)
		if !ok {
			return types.BuildModel{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid repository coordinate: %q", entry.Coordinate))
		}
		deps, err := convertDependencies(entry.Dependencies)
		if err != nil {
			return types.BuildModel{}, err
		}
		module := types.RepositoryModule{
			Coordinate:   coordinate,
			Dependencies: deps,
			Platform:     entry.Platform,
		}
		for _, artifact := range entry.Artifacts {
			module.Artifacts = append(module.Artifacts, types.ModuleArtifact{
				File:       resolvePath(baseDir, artifact.File),
				Classifier: artifact.Classifier,
				Type:       artifactType(artifact),
			})
		}
		for _, raw := range entry.Constraints {
			constraint, ok := types.ParseCoordinate(raw)
			if !ok || constraint.Version == "" {
				return types.BuildModel{}, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("invalid platform constraint %q in %s", raw, entry.Coordinate))
			}
			module.Constraints = append(module.Constraints, constraint)
		}
		model.Repository[types.RepositoryKey(coordinate)] = module
	}
	return model, nil
}

func convertDependencies(entries []dependencyEntry) ([]types.Dependency, error) {
	var deps []types.Dependency
	for _, entry := range entries {
		dep, err := convertDependency(entry)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func convertDependency(entry dependencyEntry) (types.Dependency, error) {
	transitive := true
	if entry.Transitive != nil {
		transitive = *entry.Transitive
	}
	if strings.TrimSpace(entry.Project) != "" {
		dep := types.ProjectDependency(strings.TrimSpace(entry.Project))
		return dep.WithTransitive(transitive), nil
	}
	notation := strings.TrimSpace(entry.Notation)
	classifier := entry.Classifier
	parts := strings.Split(notation, ":")
	if len(parts) == 4 {
		classifier = parts[3]
		notation = strings.Join(parts[:3], ":")
	}
	coordinate, ok := types.ParseCoordinate(notation)
	if !ok {
		return types.Dependency{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid dependency notation: %q", entry.Notation))
	}
	return types.Dependency{
		Kind:       types.DependencyKindModule,
		Coordinate: coordinate,
		Classifier: classifier,
		Transitive: transitive,
		Platform:   entry.Platform,
	}, nil
}

func artifactType(entry artifactEntry) string {
	if entry.Type != "" {
		return entry.Type
	}
	ext := strings.TrimPrefix(filepath.Ext(entry.File), ".")
	if ext == "" {
		return "jar"
	}
	return ext
}

func resolvePath(baseDir string, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

var _ ports.BuildModelLoaderPort = BuildModelFileAdapter{}
