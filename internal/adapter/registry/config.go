package registry

// Config holds the schema registry endpoint used by schema-driven bindings.
type Config struct {
	URLs     []string `validate:"required,min=1,dive,url"`
	Username string   `validate:"required_with=Password"`
	Password string
	// Compatibility is applied to a subject the first time it is registered.
	Compatibility string `validate:"omitempty,oneof=BACKWARD BACKWARD_TRANSITIVE FORWARD FORWARD_TRANSITIVE FULL FULL_TRANSITIVE NONE"`
}
