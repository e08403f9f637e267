package registry

import "fmt"

// RegistrationError reports an invalid abstract-type or variant declaration.
// It is fatal at build time: the registry cannot be frozen once one occurred.
type RegistrationError struct {
	Message string
}

func (e *RegistrationError) Error() string { return "registration error: " + e.Message }

// Reusable registration error constructors. Keep messages stable; tests and
// downstream tooling match on them.

func errDuplicateAbstractType(name string) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("abstract type %q is already registered", name)}
}

func errDuplicateVariant(name string) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("variant %q is already registered", name)}
}

func errUnknownMembership(variant, abstract string) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("variant %q declares membership in unregistered abstract type %q", variant, abstract)}
}

func errUnknownVariantRef(abstract, variant string) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("abstract type %q references unregistered variant %q", abstract, variant)}
}

func errOrphanVariant(name string) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("variant %q is not a member of any abstract type", name)}
}

func errUnknownBindTarget(kind, name string) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("cannot bind hook: %s %q is not registered", kind, name)}
}

func errInvalidKind(name string, kind Kind) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("abstract type %q has invalid kind %q", name, kind)}
}

func errEmptyName(kind string) *RegistrationError {
	return &RegistrationError{Message: kind + " name must not be empty"}
}
