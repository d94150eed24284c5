// Package manager holds the domain managers. Each manager is the only writer
// of its aggregate and re-checks the aggregate's invariants on every mutation.
package manager

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// SystemActorID stamps rows written on behalf of background handlers.
const SystemActorID = "system"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Prices are stored as NUMERIC(12,2).
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		scaled := fl.Field().Float() * 100
		return math.Abs(scaled-math.Round(scaled)) < 1e-6
	})
	return v
}

// Option customizes manager construction.
type Option func(*core)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *core) {
		c.now = now
	}
}

// WithIDGenerator overrides entity id generation.
func WithIDGenerator(newID func() string) Option {
	return func(c *core) {
		c.newID = newID
	}
}

type core struct {
	now   func() time.Time
	newID func() string
}

func newCore(opts []Option) core {
	c := core{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func requireActor(actingUserID string) error {
	if strings.TrimSpace(actingUserID) == "" {
		return apperrors.NewUnauthenticated("")
	}
	return nil
}

func validateInput(input any) error {
	return apperrors.FromValidation(validate.Struct(input))
}
