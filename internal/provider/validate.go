package provider

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/okra-platform/genpipe/internal/typename"
)

const NameValidateDescriptors = "ValidateDescriptors"

// ValidateDescriptors checks the markers of every descriptor before any data
// is gathered. All problems are reported together.
type ValidateDescriptors struct {
	cacheReader
}

// NewValidateDescriptors creates the descriptor validation pre-processor
func NewValidateDescriptors() *ValidateDescriptors {
	return &ValidateDescriptors{}
}

func (v *ValidateDescriptors) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameValidateDescriptors,
		Role:         codegen.RolePreProcessor,
		Priority:     0,
		RunInDryMode: true,
	}
}

func (v *ValidateDescriptors) PreProcess(ctx context.Context) error {
	ds, err := v.descriptors()
	if err != nil {
		return err
	}

	var errs error
	for _, d := range ds {
		if d == nil {
			errs = errors.CombineErrors(errs, errors.New("nil type descriptor"))
			continue
		}
		if err := validateMarker(d); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}

func validateMarker(d *typedesc.TypeDescriptor) error {
	m := d.Marker
	switch m.Kind {
	case typedesc.MarkerNone:
		return nil
	case typedesc.MarkerKeyedFactory:
		if m.Value == nil {
			return errors.Newf("%s: keyed factory marker has no value type", typename.FullName(d))
		}
	case typedesc.MarkerEnumKeyedFactory:
		if m.Value == nil {
			return errors.Newf("%s: enum factory marker has no value type", typename.FullName(d))
		}
		if !d.IsEnum {
			return errors.Newf("%s: enum factory marker on a type that is not an enum", typename.FullName(d))
		}
		if len(d.Members) == 0 {
			return errors.Newf("%s: enum factory marker on an enum without members", typename.FullName(d))
		}
	default:
		return errors.Newf("%s: unknown marker kind %d", typename.FullName(d), m.Kind)
	}
	return nil
}
