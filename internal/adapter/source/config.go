package source

// Config bounds how input lines are read.
type Config struct {
	MaxLineBytes int  `validate:"omitempty,gte=64"`
	SkipBlank    bool `validate:"-"`
}
