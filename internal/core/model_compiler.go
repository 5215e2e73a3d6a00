package core

import (
	"context"
	"fmt"
	"sort"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cpk-tools/internal/types"
)

// ModelCompiler validates a build model before any calculation runs.
type ModelCompiler struct{}

func NewModelCompiler() ModelCompiler {
	return ModelCompiler{}
}

func (c ModelCompiler) ValidateModel(ctx context.Context, model types.BuildModel) error {
	if len(model.Projects) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build model must declare at least one project")
	}
	for _, path := range sortedProjectPaths(model) {
		project := model.Projects[path]
		assert.NotEmpty(ctx, project.Path, "project path must be set")
		if project.Coordinate.Name == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("project %s must have a name", path))
		}
		if err := validateConfigurations(model, project); err != nil {
			return err
		}
	}
	if err := validateRepository(model); err != nil {
		return err
	}
	if err := validateCordappNames(model); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().
		Int("projects", len(model.Projects)).
		Int("modules", len(model.Repository)).
		Msg("build model validated")
	return nil
}

func validateConfigurations(model types.BuildModel, project types.Project) error {
	for name, config := range project.Configurations {
		for _, parent := range config.Extends {
			if _, ok := project.Configurations[parent]; !ok {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("configuration %s of %s extends unknown configuration %s", name, project.Path, parent))
			}
		}
		for _, dep := range config.Dependencies {
			if !dep.IsProject() {
				if dep.Coordinate.Name == "" {
					return errbuilder.New().
						WithCode(errbuilder.CodeInvalidArgument).
						WithMsg(fmt.Sprintf("configuration %s of %s declares a dependency without a name", name, project.Path))
				}
				continue
			}
			if _, ok := model.Projects[dep.Project]; !ok {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("configuration %s of %s depends on unknown project %s", name, project.Path, dep.Project))
			}
		}
	}
	return nil
}

func validateRepository(model types.BuildModel) error {
	for key, module := range model.Repository {
		if module.Coordinate.Name == "" || module.Coordinate.Version == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("repository module %s must have a name and version", key))
		}
		for _, dep := range module.Dependencies {
			if dep.IsProject() {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("repository module %s cannot depend on project %s", key, dep.Project))
			}
		}
	}
	return nil
}

// validateCordappNames rejects two projects that claim the same CorDapp
// name for different modules.
func validateCordappNames(model types.BuildModel) error {
	owners := map[string]types.Project{}
	for _, path := range sortedProjectPaths(model) {
		project := model.Projects[path]
		if project.CordappName == "" {
			continue
		}
		existing, ok := owners[project.CordappName]
		if !ok {
			owners[project.CordappName] = project
			continue
		}
		if existing.Coordinate != project.Coordinate {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("cordapp name %s is declared by both %s and %s", project.CordappName, existing.Path, project.Path))
		}
	}
	return nil
}

func sortedProjectPaths(model types.BuildModel) []string {
	paths := make([]string, 0, len(model.Projects))
	for path := range model.Projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
