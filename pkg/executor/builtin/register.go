package builtin

import "github.com/dagflow-io/dagflow/pkg/executor"

// RegisterBuiltins registers all built-in node kinds with the given registry.
func RegisterBuiltins(registry *executor.Registry) error {
	descriptors := []executor.Descriptor{
		literalDescriptor(),
		echoDescriptor(),
		concatDescriptor(),
		outputDescriptor(),
		transformDescriptor(),
		conditionalDescriptor(),
		mergeDescriptor(),
		httpDescriptor(),
		delayDescriptor(),
	}

	for _, desc := range descriptors {
		if err := registry.Register(desc); err != nil {
			return err
		}
	}

	return nil
}

// MustRegisterBuiltins registers all built-in node kinds and panics on error.
func MustRegisterBuiltins(registry *executor.Registry) {
	if err := RegisterBuiltins(registry); err != nil {
		panic("failed to register built-in node kinds: " + err.Error())
	}
}
