// Package orchestrator drives the deploy and destroy flows for the
// fotogram two-tier infrastructure: a network stack, an application
// stack that depends on it, and a static landing page published to the
// application's asset bucket.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fotogram/stackup/internal/config"
	"github.com/fotogram/stackup/internal/constants"
	apperrors "github.com/fotogram/stackup/internal/errors"
	"github.com/fotogram/stackup/internal/output"
	"github.com/fotogram/stackup/internal/provisioner"
)

// Well-known output keys exported by the application stack template.
const (
	bucketOutputKey = "S3BucketName"
	urlOutputKey    = "LoadBalancerURL"
)

const deploySteps = 3

// StackProvisioner is the stack lifecycle surface the flows depend on.
type StackProvisioner interface {
	Exists(ctx context.Context, stackName string) (bool, error)
	Active(ctx context.Context, stackName string) (bool, error)
	Status(ctx context.Context, stackName string) (status, reason string, err error)
	Create(ctx context.Context, spec provisioner.StackSpec) error
	Delete(ctx context.Context, stackName string) error
	WaitForCreate(ctx context.Context, stackName string) (string, error)
	WaitForDelete(ctx context.Context, stackName string) (string, error)
	Outputs(ctx context.Context, stackName string) ([]provisioner.Output, error)
	FailedEvents(ctx context.Context, stackName string, limit int) []string
}

// BucketReclaimer empties a bucket so its owning stack can be deleted.
type BucketReclaimer interface {
	Empty(ctx context.Context, bucketName string) error
}

// AssetPublisher uploads a local file into a bucket.
type AssetPublisher interface {
	UploadFile(ctx context.Context, bucket, localPath, key, contentType string) (int64, error)
}

// Confirmer asks the operator a yes/no question.
type Confirmer func(prompt string) bool

// Orchestrator sequences stack and bucket operations. It never issues
// concurrent requests: each stage gates the next.
type Orchestrator struct {
	cfg     *config.Config
	stacks  StackProvisioner
	buckets BucketReclaimer
	assets  AssetPublisher
	confirm Confirmer
}

// New wires an Orchestrator from its capabilities.
func New(
	cfg *config.Config,
	stacks StackProvisioner,
	buckets BucketReclaimer,
	assets AssetPublisher,
	confirm Confirmer,
) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		stacks:  stacks,
		buckets: buckets,
		assets:  assets,
		confirm: confirm,
	}
}

// Deploy creates the network stack, then the application stack, then
// publishes the landing page. Stack failures are fatal; a failed upload
// only warns, since the operator can upload the file manually.
func (o *Orchestrator) Deploy(ctx context.Context) error {
	start := time.Now()

	output.Header(fmt.Sprintf("Deploying %s infrastructure", o.cfg.Project))
	output.KeyValue("Region", o.cfg.Region)
	output.KeyValue("Environment", o.cfg.Environment)
	output.KeyValue("Network stack", o.cfg.Network.Name)
	output.KeyValue("App stack", o.cfg.App.Name)
	output.Blank()

	output.Step(1, deploySteps, fmt.Sprintf("Network stack %s", o.cfg.Network.Name))
	if _, err := o.deployStack(ctx, o.cfg.Network); err != nil {
		return err
	}

	output.Step(2, deploySteps, fmt.Sprintf("Application stack %s", o.cfg.App.Name))
	appOutputs, err := o.deployStack(ctx, o.cfg.App)
	if err != nil {
		return err
	}

	output.Step(3, deploySteps, "Landing page")
	o.publishLandingPage(ctx, appOutputs)

	o.printDeploySummary(appOutputs, time.Since(start))
	return nil
}

// deployStack creates one stack from its local template and parameter
// files and waits for it to reach a terminal state. Any pre-existing
// record under the same name, even a failed one, blocks the creation:
// the operator has to delete it first.
func (o *Orchestrator) deployStack(
	ctx context.Context,
	stackCfg config.StackConfig,
) ([]provisioner.Output, error) {
	exists, err := o.stacks.Exists(ctx, stackCfg.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrStackConflict(stackCfg.Name)
	}

	spec, err := provisioner.LoadStackSpec(stackCfg.Name, stackCfg.Template, stackCfg.Parameters)
	if err != nil {
		return nil, err
	}

	output.Infof("Creating stack %s...", stackCfg.Name)
	if err := o.stacks.Create(ctx, spec); err != nil {
		return nil, err
	}

	output.Infof("Waiting for stack %s to complete...", stackCfg.Name)
	status, err := o.stacks.WaitForCreate(ctx, stackCfg.Name)
	if err != nil {
		o.printFailureDigest(ctx, stackCfg.Name, err)
		return nil, err
	}

	output.Successf("Stack %s created with status %s", stackCfg.Name, status)
	return o.dumpOutputs(ctx, stackCfg.Name), nil
}

// dumpOutputs prints every output of a stack. Failures to read them are
// not fatal: the stack itself is already in its terminal state.
func (o *Orchestrator) dumpOutputs(ctx context.Context, stackName string) []provisioner.Output {
	outputs, err := o.stacks.Outputs(ctx, stackName)
	if err != nil {
		output.Warningf("Failed to retrieve outputs for stack %s: %v", stackName, err)
		return nil
	}
	if len(outputs) == 0 {
		output.Infof("Stack %s has no outputs", stackName)
		return nil
	}

	output.Blank()
	output.Infof("Stack outputs:")
	for _, out := range outputs {
		value := out.Value
		if out.Description != "" {
			value = fmt.Sprintf("%s (%s)", out.Value, out.Description)
		}
		output.KeyValue(out.Key, value)
	}
	output.Blank()
	return outputs
}

// publishLandingPage uploads the static landing page into the bucket the
// application stack exported. Every failure here is downgraded to a
// warning with manual-upload guidance.
func (o *Orchestrator) publishLandingPage(ctx context.Context, appOutputs []provisioner.Output) {
	bucketName, found := provisioner.FindOutput(appOutputs, bucketOutputKey)
	if !found {
		output.Warningf("Output %s not found on stack %s, skipping landing page upload",
			bucketOutputKey, o.cfg.App.Name)
		return
	}

	size, err := o.assets.UploadFile(
		ctx, bucketName, o.cfg.Asset.Source, o.cfg.Asset.Key, o.cfg.Asset.ContentType)
	if err != nil {
		output.Warningf("Failed to upload landing page: %v", err)
		output.Detail(fmt.Sprintf("Upload it manually: aws s3 cp %s s3://%s/%s",
			o.cfg.Asset.Source, bucketName, o.cfg.Asset.Key))
		return
	}

	output.Successf("Uploaded %s to s3://%s/%s (%s)",
		o.cfg.Asset.Source, bucketName, o.cfg.Asset.Key, humanize.Bytes(uint64(size)))
}

func (o *Orchestrator) printDeploySummary(appOutputs []provisioner.Output, elapsed time.Duration) {
	output.Blank()
	output.Successf("Deployment complete in %s", output.Duration(elapsed))

	url, found := provisioner.FindOutput(appOutputs, urlOutputKey)
	if found {
		output.KeyValueBold("Application URL", ensureScheme(url))
	} else {
		output.Warningf("Output %s not found on stack %s", urlOutputKey, o.cfg.App.Name)
	}

	output.Blank()
	output.Infof("Next steps:")
	output.NumberedList([]string{
		"Open the application URL in a browser",
		fmt.Sprintf("Inspect the stacks with: %s status", constants.ProjectName),
		fmt.Sprintf("Tear everything down with: %s destroy", constants.ProjectName),
	})
}

// Destroy tears down the application stack, then the network stack,
// emptying the asset bucket first so the service accepts the deletion.
// Declining the confirmation or having nothing to delete are both
// successful outcomes.
func (o *Orchestrator) Destroy(ctx context.Context) error {
	output.Header(fmt.Sprintf("Destroying %s infrastructure", o.cfg.Project))
	output.Warning("This permanently deletes the following stacks and cannot be undone:")
	output.List([]string{
		fmt.Sprintf("%s (application)", o.cfg.App.Name),
		fmt.Sprintf("%s (network)", o.cfg.Network.Name),
	})
	output.KeyValue("Region", o.cfg.Region)
	output.Blank()

	if !o.confirm("Destroy these stacks?") {
		output.Info("Destroy cancelled")
		return nil
	}

	appActive, err := o.stacks.Active(ctx, o.cfg.App.Name)
	if err != nil {
		return err
	}
	networkActive, err := o.stacks.Active(ctx, o.cfg.Network.Name)
	if err != nil {
		return err
	}
	if !appActive && !networkActive {
		output.Info("No stacks to delete")
		return nil
	}

	if appActive {
		if err := o.emptyAppBucket(ctx); err != nil {
			return err
		}
		if err := o.destroyStack(ctx, o.cfg.App.Name); err != nil {
			return err
		}
	} else {
		output.Infof("Stack %s is not active, skipping", o.cfg.App.Name)
	}

	if networkActive {
		if err := o.destroyStack(ctx, o.cfg.Network.Name); err != nil {
			return err
		}
	} else {
		output.Infof("Stack %s is not active, skipping", o.cfg.Network.Name)
	}

	output.Blank()
	output.Successf("All stacks destroyed")
	return nil
}

// emptyAppBucket resolves the asset bucket from the application stack
// outputs and empties it. A missing output only warns: the stack may
// never have exported a bucket, or it may already be gone. An emptying
// failure aborts before any delete request is issued, because the
// service would reject the stack deletion anyway.
func (o *Orchestrator) emptyAppBucket(ctx context.Context) error {
	outputs, err := o.stacks.Outputs(ctx, o.cfg.App.Name)
	if err != nil {
		output.Warningf("Failed to retrieve outputs for stack %s: %v", o.cfg.App.Name, err)
		output.Infof("Skipping bucket cleanup")
		return nil
	}

	bucketName, found := provisioner.FindOutput(outputs, bucketOutputKey)
	if !found {
		output.Warningf("Output %s not found on stack %s, skipping bucket cleanup",
			bucketOutputKey, o.cfg.App.Name)
		return nil
	}

	output.Infof("Emptying bucket %s...", bucketName)
	if err := o.buckets.Empty(ctx, bucketName); err != nil {
		return err
	}

	output.Successf("Bucket %s emptied", bucketName)
	return nil
}

func (o *Orchestrator) destroyStack(ctx context.Context, stackName string) error {
	output.Infof("Deleting stack %s...", stackName)
	if err := o.stacks.Delete(ctx, stackName); err != nil {
		return err
	}

	output.Infof("Waiting for stack %s to be deleted...", stackName)
	status, err := o.stacks.WaitForDelete(ctx, stackName)
	if err != nil {
		o.printFailureDigest(ctx, stackName, err)
		return err
	}

	output.Successf("Stack %s deleted (%s)", stackName, status)
	return nil
}

// printFailureDigest dumps the most recent failure events after a stack
// operation failed or ran out of poll attempts. Best effort: an
// unreadable event log, or a timeout with no failed resources yet,
// prints nothing.
func (o *Orchestrator) printFailureDigest(ctx context.Context, stackName string, err error) {
	code := apperrors.GetErrorCode(err)
	if code != apperrors.ErrCodeStackFailed && code != apperrors.ErrCodeWaitTimeout {
		return
	}

	events := o.stacks.FailedEvents(ctx, stackName, provisioner.DefaultFailedEventLimit)
	if len(events) == 0 {
		return
	}

	output.Warningf("Recent failure events for stack %s:", stackName)
	output.List(events)
}

// StackReport is one stack's state as shown by the status command.
type StackReport struct {
	Name    string               `json:"name" yaml:"name"`
	Status  string               `json:"status" yaml:"status"`
	Reason  string               `json:"reason,omitempty" yaml:"reason,omitempty"`
	Outputs []provisioner.Output `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// StatusNotFound marks a stack with no remote record at all.
const StatusNotFound = "NOT_FOUND"

// Status reports both stacks in creation order.
func (o *Orchestrator) Status(ctx context.Context) ([]StackReport, error) {
	reports := make([]StackReport, 0, 2)

	for _, name := range []string{o.cfg.Network.Name, o.cfg.App.Name} {
		exists, err := o.stacks.Exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			reports = append(reports, StackReport{Name: name, Status: StatusNotFound})
			continue
		}

		status, reason, err := o.stacks.Status(ctx, name)
		if err != nil {
			return nil, err
		}

		report := StackReport{Name: name, Status: status, Reason: reason}
		if outputs, err := o.stacks.Outputs(ctx, name); err == nil {
			report.Outputs = outputs
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// ensureScheme prefixes bare hostnames so the printed URL is clickable.
func ensureScheme(url string) string {
	if strings.Contains(url, "://") {
		return url
	}
	return "http://" + url
}
