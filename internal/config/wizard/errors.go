package wizard

import "errors"

var (
	errClusterNameRequired = errors.New("cluster name is required")
	errClusterNameInvalid  = errors.New("must be 1-32 lowercase alphanumeric characters or hyphens")
	errPortInvalid         = errors.New("must be a port number between 1 and 65535")
	errImageRequired       = errors.New("image reference is required")
)
