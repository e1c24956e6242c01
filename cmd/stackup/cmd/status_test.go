package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fotogram/stackup/internal/orchestrator"
	"github.com/fotogram/stackup/internal/output"
	"github.com/fotogram/stackup/internal/provisioner"
)

func captureStatusOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	origStdout := output.Stdout
	output.Stdout = &buf
	t.Cleanup(func() { output.Stdout = origStdout })
	return &buf
}

func statusFixture() []orchestrator.StackReport {
	return []orchestrator.StackReport{
		{
			Name:   "fotogram-network",
			Status: orchestrator.StatusNotFound,
		},
		{
			Name:   "fotogram-app",
			Status: "CREATE_COMPLETE",
			Outputs: []provisioner.Output{
				{Key: "S3BucketName", Value: "fotogram-assets-1234"},
				{Key: "LoadBalancerURL", Value: "alb.example.com", Description: "Public URL"},
			},
		},
	}
}

func TestRenderStatus(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		buf := captureStatusOutput(t)

		err := renderStatus(statusFixture(), "text")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "fotogram-network")
		assert.Contains(t, buf.String(), "NOT_FOUND")
		assert.Contains(t, buf.String(), "fotogram-app")
		assert.Contains(t, buf.String(), "S3BucketName")
		assert.Contains(t, buf.String(), "fotogram-assets-1234")
	})

	t.Run("json round-trips", func(t *testing.T) {
		buf := captureStatusOutput(t)

		err := renderStatus(statusFixture(), "json")

		require.NoError(t, err)
		var decoded []orchestrator.StackReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "fotogram-app", decoded[1].Name)
		assert.Len(t, decoded[1].Outputs, 2)
	})

	t.Run("yaml round-trips", func(t *testing.T) {
		buf := captureStatusOutput(t)

		err := renderStatus(statusFixture(), "yaml")

		require.NoError(t, err)
		var decoded []orchestrator.StackReport
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "CREATE_COMPLETE", decoded[1].Status)
	})

	t.Run("unknown format", func(t *testing.T) {
		err := renderStatus(statusFixture(), "xml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
	})
}
