package provisioner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fotogram/stackup/internal/errors"
	"github.com/fotogram/stackup/internal/testutil"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplate(t *testing.T) {
	t.Run("reads template body", func(t *testing.T) {
		path := writeTestFile(t, "network.yml", "Resources:\n  VPC:\n    Type: AWS::EC2::VPC\n")

		body, err := LoadTemplate(path)

		require.NoError(t, err)
		assert.Contains(t, body, "AWS::EC2::VPC")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTemplate(filepath.Join(t.TempDir(), "absent.yml"))

		require.Error(t, err)
		testutil.AssertAppErrorCode(t, err, apperrors.ErrCodeMissingInputFile)
	})
}

func TestLoadParameters(t *testing.T) {
	t.Run("decodes parameter list", func(t *testing.T) {
		path := writeTestFile(t, "network-parameters.json", `[
			{"ParameterKey": "EnvironmentName", "ParameterValue": "fotogram"},
			{"ParameterKey": "VpcCIDR", "ParameterValue": "10.0.0.0/16"}
		]`)

		params, err := LoadParameters(path)

		require.NoError(t, err)
		require.Len(t, params, 2)
		assert.Equal(t, "EnvironmentName", params[0].Key)
		assert.Equal(t, "fotogram", params[0].Value)
		assert.Equal(t, "VpcCIDR", params[1].Key)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadParameters(filepath.Join(t.TempDir(), "absent.json"))

		require.Error(t, err)
		testutil.AssertAppErrorCode(t, err, apperrors.ErrCodeMissingInputFile)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := writeTestFile(t, "broken.json", `{"ParameterKey": "oops"`)

		_, err := LoadParameters(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid parameters file")
	})
}

func TestLoadStackSpec(t *testing.T) {
	t.Run("assembles spec from files", func(t *testing.T) {
		dir := t.TempDir()
		templatePath := filepath.Join(dir, "app.yml")
		parametersPath := filepath.Join(dir, "app-parameters.json")
		require.NoError(t, os.WriteFile(templatePath, []byte("Resources: {}\n"), 0o644))
		require.NoError(t, os.WriteFile(parametersPath, []byte(`[{"ParameterKey":"K","ParameterValue":"V"}]`), 0o644))

		spec, err := LoadStackSpec("fotogram-app", templatePath, parametersPath)

		require.NoError(t, err)
		assert.Equal(t, "fotogram-app", spec.Name)
		assert.Equal(t, "Resources: {}\n", spec.TemplateBody)
		require.Len(t, spec.Parameters, 1)
		assert.Equal(t, "K", spec.Parameters[0].Key)
	})

	t.Run("missing template fails fast", func(t *testing.T) {
		dir := t.TempDir()
		parametersPath := filepath.Join(dir, "app-parameters.json")
		require.NoError(t, os.WriteFile(parametersPath, []byte(`[]`), 0o644))

		_, err := LoadStackSpec("fotogram-app", filepath.Join(dir, "absent.yml"), parametersPath)

		require.Error(t, err)
		testutil.AssertAppErrorCode(t, err, apperrors.ErrCodeMissingInputFile)
	})
}
