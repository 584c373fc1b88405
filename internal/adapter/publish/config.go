package publish

// Config captures the Kafka producer identity and retry behavior. Brokers and
// topic come from the output binding.
type Config struct {
	ClientID              string  `validate:"required"`
	TransactionalID       string  `validate:"omitempty"`
	MaxRetryAttempts      int     `validate:"omitempty,gte=1"`
	RetryInitialBackoffMS int     `validate:"omitempty,gte=0"`
	RetryMaxBackoffMS     int     `validate:"omitempty,gte=0"`
	RetryJitter           float64 `validate:"omitempty,gte=0"`
	WriteTimeoutSeconds   int     `validate:"omitempty,gte=1"`
}
