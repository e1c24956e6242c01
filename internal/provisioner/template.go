package provisioner

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/fotogram/stackup/internal/errors"
)

// LoadTemplate reads a CloudFormation template body from a local file.
func LoadTemplate(path string) (string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.ErrMissingInputFile(path, err)
	}
	return string(body), nil
}

// LoadParameters reads a parameters file: a JSON array of
// {"ParameterKey": ..., "ParameterValue": ...} objects, the same shape the
// AWS CLI accepts.
func LoadParameters(path string) ([]Parameter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrMissingInputFile(path, err)
	}

	var params []Parameter
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters file %s: %w", path, err)
	}

	return params, nil
}

// LoadStackSpec reads both input files of a stack and assembles its creation
// request.
func LoadStackSpec(name, templatePath, parametersPath string) (StackSpec, error) {
	body, err := LoadTemplate(templatePath)
	if err != nil {
		return StackSpec{}, err
	}

	params, err := LoadParameters(parametersPath)
	if err != nil {
		return StackSpec{}, err
	}

	return StackSpec{
		Name:         name,
		TemplateBody: body,
		Parameters:   params,
	}, nil
}
