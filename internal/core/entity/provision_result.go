package entity

// ProvisionResult describes what topic provisioning did for a binding.
type ProvisionResult string

const (
	ProvisionSkipped ProvisionResult = "skipped"
	ProvisionCreated ProvisionResult = "created"
	ProvisionExists  ProvisionResult = "exists"
)
