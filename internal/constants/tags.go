package constants

// Tag keys applied to every stack stackup creates.
const (
	// ProjectTagKey labels stack resources with the owning project.
	ProjectTagKey = "Project"
	// EnvironmentTagKey labels stack resources with the deployment environment.
	EnvironmentTagKey = "Environment"
	// ManagedByTagKey records the tool that created the stack.
	ManagedByTagKey = "ManagedBy"
)
