package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// ErrValidation matches every *ValidationError with errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError rejects a pending field value
type ValidationError struct {
	Field models.Field
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

const (
	MinPort             = 1
	MaxPort             = 65535
	MaxLoadBalanceCount = 10
)

// Validator checks the candidate settings for one field. candidate already
// carries the pending value; validators read other fields but never
// change them.
type Validator func(ctx context.Context, candidate models.Settings) error

// ValidationGate runs the validator registered for a field against a
// candidate model. Fields without a validator only need to coerce.
type ValidationGate struct {
	validators map[models.Field]Validator
}

// NewValidationGate returns a gate with the built-in validators
func NewValidationGate() *ValidationGate {
	return &ValidationGate{
		validators: map[models.Field]Validator{
			models.FieldLocalPort:   validateLocalPort,
			models.FieldPacPort:     validatePacPort,
			models.FieldGfwListURL:  validateGfwListURL,
			models.FieldHTTPProxy:   validateHTTPProxy,
			models.FieldLoadBalance: validateLoadBalance,
			models.FieldACL:         validateACL,
			models.FieldLang:        validateLang,
		},
	}
}

// Register replaces the validator for field
func (g *ValidationGate) Register(field models.Field, v Validator) {
	g.validators[field] = v
}

// Validate applies value to a copy of base and validates the result. On
// success it returns the candidate; base is never modified.
func (g *ValidationGate) Validate(ctx context.Context, base models.Settings, field models.Field, value any) (models.Settings, error) {
	if err := ctx.Err(); err != nil {
		return base, err
	}

	candidate, err := ApplyField(base, field, value)
	if err != nil {
		if errors.Is(err, ErrUnknownField) {
			return base, err
		}
		return base, &ValidationError{Field: field, Err: errors.Unwrap(err)}
	}

	validate, ok := g.validators[field]
	if !ok {
		return candidate, nil
	}
	if err := validate(ctx, candidate); err != nil {
		return base, &ValidationError{Field: field, Err: err}
	}
	return candidate, nil
}

func checkPort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("port %d out of range %d-%d", port, MinPort, MaxPort)
	}
	return nil
}

func validateLocalPort(_ context.Context, s models.Settings) error {
	if err := checkPort(s.LocalPort); err != nil {
		return err
	}
	if s.LocalPort == s.PacPort {
		return fmt.Errorf("port %d is already used by the PAC server", s.LocalPort)
	}
	if s.HTTPProxy.Enable && s.LocalPort == s.HTTPProxy.Port {
		return fmt.Errorf("port %d is already used by the HTTP proxy", s.LocalPort)
	}
	return nil
}

func validatePacPort(_ context.Context, s models.Settings) error {
	if err := checkPort(s.PacPort); err != nil {
		return err
	}
	if s.PacPort == s.LocalPort {
		return fmt.Errorf("port %d is already used by the local server", s.PacPort)
	}
	if s.HTTPProxy.Enable && s.PacPort == s.HTTPProxy.Port {
		return fmt.Errorf("port %d is already used by the HTTP proxy", s.PacPort)
	}
	return nil
}

func validateGfwListURL(_ context.Context, s models.Settings) error {
	u, err := url.Parse(s.GfwListURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", s.GfwListURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s.GfwListURL)
	}
	return nil
}

func validateHTTPProxy(_ context.Context, s models.Settings) error {
	if !s.HTTPProxy.Enable {
		return nil
	}
	if err := checkPort(s.HTTPProxy.Port); err != nil {
		return err
	}
	if s.HTTPProxy.Port == s.LocalPort || s.HTTPProxy.Port == s.PacPort {
		return fmt.Errorf("port %d is already in use", s.HTTPProxy.Port)
	}
	return nil
}

func validateLoadBalance(_ context.Context, s models.Settings) error {
	lb := s.LoadBalance
	if !lb.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q", lb.Strategy)
	}
	if lb.Count < 1 || lb.Count > MaxLoadBalanceCount {
		return fmt.Errorf("count %d out of range 1-%d", lb.Count, MaxLoadBalanceCount)
	}
	return nil
}

func validateACL(_ context.Context, s models.Settings) error {
	if s.ACL.Enable && s.ACL.URL == "" {
		return errors.New("enabled ACL needs a rules file")
	}
	return nil
}

func validateLang(_ context.Context, s models.Settings) error {
	if s.Lang == "" {
		return errors.New("language must not be empty")
	}
	return nil
}
