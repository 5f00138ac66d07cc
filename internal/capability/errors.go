package capability

import "errors"

// Domain errors for the capability package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, capability.ErrInvalidCapability) {
//	    // reject the registration, core state is unchanged
//	}
var (
	// ErrInvalidCapability is returned when a capability declaration
	// fails structural validation.
	ErrInvalidCapability = errors.New("capability: invalid declaration")

	// ErrInvalidDescriptor is returned when a descriptor has an unknown
	// kind or dimension preference.
	ErrInvalidDescriptor = errors.New("capability: invalid descriptor")

	// ErrModuleNotFound is returned when a module ID is not registered.
	ErrModuleNotFound = errors.New("capability: module not registered")
)
