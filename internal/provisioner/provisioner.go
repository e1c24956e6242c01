// Package provisioner drives the CloudFormation stack lifecycle: create,
// delete, status polling, and output retrieval.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/fotogram/stackup/internal/errors"
	"github.com/fotogram/stackup/internal/logger"
)

// DefaultFailedEventLimit bounds the failure-event digest reported after a
// failed stack operation.
const DefaultFailedEventLimit = 10

// CloudFormationAPI defines the interface for CloudFormation operations.
// This interface enables mocking for unit tests.
type CloudFormationAPI interface {
	DescribeStacks(
		ctx context.Context,
		params *cloudformation.DescribeStacksInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DescribeStacksOutput, error)
	DescribeStackEvents(
		ctx context.Context,
		params *cloudformation.DescribeStackEventsInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DescribeStackEventsOutput, error)
	CreateStack(
		ctx context.Context,
		params *cloudformation.CreateStackInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.CreateStackOutput, error)
	DeleteStack(
		ctx context.Context,
		params *cloudformation.DeleteStackInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DeleteStackOutput, error)
}

var _ CloudFormationAPI = (*cloudformation.Client)(nil)

// Parameter is one template parameter, decoded from the parameters file.
type Parameter struct {
	Key   string `json:"ParameterKey"`
	Value string `json:"ParameterValue"`
}

// Output is one stack output, in the order the service reports them.
type Output struct {
	Key         string `json:"key" yaml:"key"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// StackSpec describes a stack creation request.
type StackSpec struct {
	Name         string
	TemplateBody string
	Parameters   []Parameter
}

// Options configures a Provisioner.
type Options struct {
	PollInterval time.Duration
	MaxAttempts  int
	// Tags are applied to every created stack.
	Tags map[string]string
	// OnPoll, when set, is invoked after every status check during waits.
	OnPoll func(stackName, status string, attempt, maxAttempts int)
}

// Provisioner implements the stack lifecycle against AWS CloudFormation.
type Provisioner struct {
	client CloudFormationAPI
	opts   Options
}

// New creates a Provisioner around a CloudFormation client.
func New(client CloudFormationAPI, opts Options) *Provisioner {
	return &Provisioner{client: client, opts: opts}
}

// Exists reports whether any record of the stack exists, regardless of its
// status. Deployments refuse to touch a stack that has any record at all, so
// even rolled-back or deleted-but-retained records count.
func (p *Provisioner) Exists(ctx context.Context, stackName string) (bool, error) {
	_, _, err := p.stackStatus(ctx, stackName)
	if err != nil {
		if isStackNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Active reports whether the stack exists in any state other than
// DELETE_COMPLETE. Deletion flows use this: a fully deleted stack may keep a
// describable record for a while, but there is nothing left to delete.
func (p *Provisioner) Active(ctx context.Context, stackName string) (bool, error) {
	status, _, err := p.stackStatus(ctx, stackName)
	if err != nil {
		if isStackNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return types.StackStatus(status) != types.StackStatusDeleteComplete, nil
}

// Status returns the stack's current status and status reason.
func (p *Provisioner) Status(ctx context.Context, stackName string) (string, string, error) {
	return p.stackStatus(ctx, stackName)
}

// Create submits a stack creation request. It does not wait; pair it with
// WaitForCreate.
func (p *Provisioner) Create(ctx context.Context, spec StackSpec) error {
	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(spec.Name),
		TemplateBody: aws.String(spec.TemplateBody),
		Parameters:   toCFNParameters(spec.Parameters),
		Capabilities: []types.Capability{types.CapabilityCapabilityNamedIam},
		Tags:         p.stackTags(),
	}

	slog.Debug("creating stack", "stack", spec.Name, "parameters", len(spec.Parameters))

	_, err := p.client.CreateStack(ctx, input)
	if err != nil {
		return apperrors.ErrRequestRejected("create", spec.Name, err)
	}
	return nil
}

// Delete submits a stack deletion request. It does not wait; pair it with
// WaitForDelete.
func (p *Provisioner) Delete(ctx context.Context, stackName string) error {
	slog.Debug("deleting stack", "stack", stackName)

	_, err := p.client.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return apperrors.ErrRequestRejected("delete", stackName, err)
	}
	return nil
}

// WaitForCreate polls the stack on a fixed interval until creation reaches a
// terminal state or the attempt budget is spent. It returns the final status
// on success; failed or rolled-back terminal states and exhausted attempts
// return an error.
func (p *Provisioner) WaitForCreate(ctx context.Context, stackName string) (string, error) {
	return p.poll(ctx, stackName, p.checkCreateStatus)
}

// WaitForDelete polls the stack until it is gone. A "does not exist" answer
// or a DELETE_COMPLETE status both count as success.
func (p *Provisioner) WaitForDelete(ctx context.Context, stackName string) (string, error) {
	return p.poll(ctx, stackName, p.checkDeleteStatus)
}

// pollResult is one status check's verdict: done with a final status, failed
// with an error, or neither (keep polling).
type pollResult struct {
	done   bool
	status string
	err    error
}

func (p *Provisioner) poll(
	ctx context.Context,
	stackName string,
	check func(ctx context.Context, stackName string) pollResult,
) (string, error) {
	logArgs := []any{
		"stack", stackName,
		"poll_interval", p.opts.PollInterval,
		"max_attempts", p.opts.MaxAttempts,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	slog.Debug("starting status poll", logArgs...)

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		res := check(ctx, stackName)
		if res.err != nil {
			return res.status, res.err
		}
		if res.done {
			return res.status, nil
		}

		if p.opts.OnPoll != nil {
			p.opts.OnPoll(stackName, res.status, attempt, p.opts.MaxAttempts)
		}
		slog.Debug("stack not yet terminal",
			"stack", stackName, "status", res.status,
			"attempt", attempt, "max_attempts", p.opts.MaxAttempts)

		if attempt == p.opts.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}

	return "", apperrors.ErrWaitTimeout(stackName, p.opts.MaxAttempts)
}

func (p *Provisioner) checkCreateStatus(ctx context.Context, stackName string) pollResult {
	status, reason, err := p.stackStatus(ctx, stackName)
	if err != nil {
		return pollResult{err: err}
	}

	switch types.StackStatus(status) {
	case types.StackStatusCreateComplete:
		return pollResult{done: true, status: status}
	case types.StackStatusCreateFailed,
		types.StackStatusRollbackComplete,
		types.StackStatusRollbackFailed,
		types.StackStatusDeleteComplete,
		types.StackStatusDeleteFailed:
		return pollResult{status: status, err: apperrors.ErrStackFailed(stackName, status, reason)}
	default:
		// CREATE_IN_PROGRESS, ROLLBACK_IN_PROGRESS, and anything else
		// that is still moving. The attempt budget bounds the loop.
		return pollResult{status: status}
	}
}

func (p *Provisioner) checkDeleteStatus(ctx context.Context, stackName string) pollResult {
	status, reason, err := p.stackStatus(ctx, stackName)
	if err != nil {
		if isStackNotFound(err) {
			return pollResult{done: true, status: string(types.StackStatusDeleteComplete)}
		}
		return pollResult{err: err}
	}

	switch types.StackStatus(status) {
	case types.StackStatusDeleteComplete:
		return pollResult{done: true, status: status}
	case types.StackStatusDeleteFailed:
		return pollResult{status: status, err: apperrors.ErrStackFailed(stackName, status, reason)}
	case types.StackStatusDeleteInProgress:
		return pollResult{status: status}
	default:
		return pollResult{
			status: status,
			err:    apperrors.ErrStackFailed(stackName, status, "unexpected status during deletion"),
		}
	}
}

// Outputs retrieves the stack's outputs in the order the service reports them.
func (p *Provisioner) Outputs(ctx context.Context, stackName string) ([]Output, error) {
	result, err := p.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, err
	}

	if len(result.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", stackName)
	}

	outputs := make([]Output, 0, len(result.Stacks[0].Outputs))
	for _, out := range result.Stacks[0].Outputs {
		if out.OutputKey == nil || out.OutputValue == nil {
			continue
		}
		outputs = append(outputs, Output{
			Key:         aws.ToString(out.OutputKey),
			Value:       aws.ToString(out.OutputValue),
			Description: aws.ToString(out.Description),
		})
	}

	return outputs, nil
}

// FindOutput scans outputs for key. A missing key is not an error; callers
// decide whether absence matters.
func FindOutput(outputs []Output, key string) (string, bool) {
	for _, out := range outputs {
		if out.Key == key {
			return out.Value, true
		}
	}
	return "", false
}

// FailedEvents retrieves the most recent failure-tagged stack events, newest
// first, bounded by limit. It is best-effort: API errors yield nil.
func (p *Provisioner) FailedEvents(ctx context.Context, stackName string, limit int) []string {
	result, err := p.client.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		slog.Debug("could not fetch stack events", "stack", stackName, "error", err)
		return nil
	}

	var failures []string
	for i := range result.StackEvents {
		event := &result.StackEvents[i]
		status := string(event.ResourceStatus)
		if !strings.Contains(status, "FAILED") {
			continue
		}
		reason := aws.ToString(event.ResourceStatusReason)
		if reason == "" {
			continue
		}
		failures = append(failures, fmt.Sprintf("%s (%s): %s",
			aws.ToString(event.LogicalResourceId),
			aws.ToString(event.ResourceType),
			reason))
		if len(failures) == limit {
			break
		}
	}

	return failures
}

// stackStatus returns the current status of a stack.
func (p *Provisioner) stackStatus(ctx context.Context, stackName string) (status, reason string, err error) {
	result, err := p.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return "", "", err
	}

	if len(result.Stacks) == 0 {
		return "", "", fmt.Errorf("stack %s not found", stackName)
	}

	stack := result.Stacks[0]
	return string(stack.StackStatus), aws.ToString(stack.StackStatusReason), nil
}

// stackTags renders the configured tag set in a stable order.
func (p *Provisioner) stackTags() []types.Tag {
	keys := make([]string, 0, len(p.opts.Tags))
	for key := range p.opts.Tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tags := make([]types.Tag, 0, len(keys))
	for _, key := range keys {
		tags = append(tags, types.Tag{
			Key:   aws.String(key),
			Value: aws.String(p.opts.Tags[key]),
		})
	}
	return tags
}

func toCFNParameters(params []Parameter) []types.Parameter {
	cfnParams := make([]types.Parameter, 0, len(params))
	for _, param := range params {
		cfnParams = append(cfnParams, types.Parameter{
			ParameterKey:   aws.String(param.Key),
			ParameterValue: aws.String(param.Value),
		})
	}
	return cfnParams
}

// isStackNotFound reports whether err is CloudFormation's way of saying the
// stack has no record. DescribeStacks answers with a ValidationError whose
// message ends in "does not exist" rather than a typed not-found error.
func isStackNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" &&
			strings.Contains(apiErr.ErrorMessage(), "does not exist")
	}
	return strings.Contains(err.Error(), "does not exist")
}
