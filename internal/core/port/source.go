package port

import "context"

// LineHandler consumes a single raw input line.
type LineHandler func(ctx context.Context, line []byte) error

// Source feeds raw values into the binding until it is exhausted or stopped.
type Source interface {
	SetHandler(handler LineHandler)
	Run(ctx context.Context) error
}

// ValueDecoder turns a raw input line into a bindable value.
type ValueDecoder interface {
	Decode(line []byte) (any, error)
}
