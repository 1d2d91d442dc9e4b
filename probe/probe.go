package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Func reports an unavailable dependency by returning an error.
type Func func(ctx context.Context) error

// MongoPinger is the part of *mongo.Client the Mongo probe needs.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// NewPingProbe names fn so that failures identify the dependency.
func NewPingProbe(name string, fn func(ctx context.Context) error) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return nilComponentError(name, "ping function")
		}
		if err := fn(contextOrBackground(ctx)); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// NewMongoPingProbe pings client with readPref, readpref.Primary when nil.
func NewMongoPingProbe(client MongoPinger, readPref *readpref.ReadPref) Func {
	return func(ctx context.Context) error {
		if client == nil {
			return nilComponentError("mongo", "client")
		}

		rp := readPref
		if rp == nil {
			rp = readpref.Primary()
		}
		if err := client.Ping(contextOrBackground(ctx), rp); err != nil {
			return fmt.Errorf("mongo probe failed: %w", err)
		}
		return nil
	}
}

// NewSpecProbe fails while doc does not validate, which keeps a server that
// was started leniently out of rotation until its document is fixed.
func NewSpecProbe(doc *openapi3.T) Func {
	return func(ctx context.Context) error {
		if doc == nil {
			return errors.New("spec probe: document is nil")
		}
		if err := doc.Validate(contextOrBackground(ctx)); err != nil {
			return fmt.Errorf("spec probe failed: %w", err)
		}
		return nil
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func nilComponentError(name, component string) error {
	return fmt.Errorf("%s probe: %s is nil", name, component)
}
