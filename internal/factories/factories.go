package factories

import (
	fab "github.com/Goldziher/fabricator"
)

// New builds a test fixture of any struct type, with optional overrides.
func New[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}
