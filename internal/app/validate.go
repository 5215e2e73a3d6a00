package app

import (
	"context"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/core"
)

func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	modelPath := strings.TrimSpace(req.ModelPath)
	if modelPath == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build model path is required")
	}
	model, err := s.ModelLoader.Load(modelPath)
	if err != nil {
		return ValidateResult{}, err
	}
	if err := core.NewModelCompiler().ValidateModel(ctx, model); err != nil {
		return ValidateResult{}, err
	}
	projects := make([]string, 0, len(model.Projects))
	for path := range model.Projects {
		projects = append(projects, path)
	}
	sort.Strings(projects)
	return ValidateResult{Projects: projects, Modules: len(model.Repository)}, nil
}
