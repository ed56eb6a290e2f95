package nitrofs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsafeName is returned for a name that cannot be used as a host path
// component.
var ErrUnsafeName = errors.New("unsafe file name")

// SafeName validates one component for use on a host filesystem. Names
// come from the image, so ".." and separators are rejected rather than
// interpreted.
func SafeName(name string) (string, error) {
	switch {
	case name == "", name == ".", name == "..":
		return "", fmt.Errorf("%q: %w", name, ErrUnsafeName)
	case strings.ContainsAny(name, "/\\\x00"):
		return "", fmt.Errorf("%q: %w", name, ErrUnsafeName)
	}
	return name, nil
}

// SafeComponents returns the lossy components of p, each checked with
// SafeName.
func (p Path) SafeComponents() ([]string, error) {
	parts := make([]string, len(p))
	for i, name := range p {
		s, err := SafeName(name.AsStringLossy())
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	return parts, nil
}
