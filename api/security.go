package api

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3filter"
)

// authenticate satisfies apiKey schemes whose presented key equals the
// configured secret. The key is read from the location the scheme declares.
func (a *API) authenticate(_ context.Context, in *openapi3filter.AuthenticationInput) error {
	scheme := in.SecurityScheme
	if scheme == nil || scheme.Type != "apiKey" {
		return fmt.Errorf("%w: %s", ErrUnsupportedScheme, in.SecuritySchemeName)
	}
	if a.secret == "" {
		return ErrInvalidAPIKey
	}

	req := in.RequestValidationInput.Request
	var presented string
	switch scheme.In {
	case "header":
		presented = req.Header.Get(scheme.Name)
	case "query":
		presented = req.URL.Query().Get(scheme.Name)
	case "cookie":
		if c, err := req.Cookie(scheme.Name); err == nil {
			presented = c.Value
		}
	default:
		return fmt.Errorf("%w: apiKey in %q", ErrUnsupportedScheme, scheme.In)
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(a.secret)) != 1 {
		return ErrInvalidAPIKey
	}
	return nil
}
