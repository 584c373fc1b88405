package port

import (
	"context"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
)

// TopicProvisioner makes sure the binding topic exists before the first emit.
type TopicProvisioner interface {
	Ensure(ctx context.Context, binding *entity.OutputBindingConfig) (entity.ProvisionResult, error)
}
