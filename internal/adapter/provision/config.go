package provision

// Config controls how topics are created for bindings with AutoCreateTopic set.
type Config struct {
	ClientID             string `validate:"required"`
	RequestTimeoutMillis int32  `validate:"omitempty,gte=1"`
	// TopicConfigs are passed through as topic-level configs, e.g. cleanup.policy.
	TopicConfigs map[string]string
}

// TopicSpec is the provisioning request derived from a binding. It is
// validated separately so the binding itself stays unconstrained.
type TopicSpec struct {
	Topic             string `validate:"required"`
	PartitionCount    int32  `validate:"gte=1"`
	ReplicationFactor int16  `validate:"gte=1"`
}
