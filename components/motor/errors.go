package motor

import "github.com/pkg/errors"

// NewDuplicatePortError returns an error for two motors configured on the same port.
func NewDuplicatePortError(port int, first, second string) error {
	return errors.Errorf("motors %s and %s are both configured on port %d", first, second, port)
}

// NewEmptyGroupError returns an error for a motor group without motors.
func NewEmptyGroupError(name string) error {
	return errors.Errorf("motor group %s needs at least one motor", name)
}
