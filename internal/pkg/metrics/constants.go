package metrics

// Component label values used by app-level metrics.
const (
	ComponentKafka       = "kafka"
	ComponentCodec       = "codec"
	ComponentProvisioner = "provisioner"
	ComponentRegistry    = "schema_registry"
	ComponentBinding     = "binding"
)
