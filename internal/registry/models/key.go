package models

import (
	"sort"
	"strings"
)

// Canonical key rules. A key is name + "." + extension; the name itself may
// not contain the separator, so parsing a combined key is unambiguous.
const (
	MinNameLen = 3
	MaxNameLen = 40

	keySeparator = "."
)

// SupportedExtensions is the fixed set of extensions the registry accepts.
var SupportedExtensions = map[string]struct{}{
	"icp":  {},
	"ic":   {},
	"moon": {},
}

// NewKey validates a name and extension pair and returns the canonical key.
func NewKey(name, extension string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if err := validateExtension(extension); err != nil {
		return "", err
	}
	if strings.Contains(name, keySeparator) {
		return "", &InvalidKeyError{Key: name + keySeparator + extension}
	}
	return name + keySeparator + extension, nil
}

// ParseKey validates an already-combined key string and returns it in
// canonical form. The split is on the first separator occurrence and both
// parts are re-validated, so "ab.cd.icp" fails on its extension rather than
// silently shifting the boundary.
func ParseKey(key string) (string, error) {
	name, extension, found := strings.Cut(key, keySeparator)
	if !found {
		return "", &InvalidKeyError{Key: key}
	}
	return NewKey(name, extension)
}

func validateName(name string) error {
	if len(name) < MinNameLen || len(name) > MaxNameLen {
		return &InvalidNameLengthError{Length: len(name)}
	}
	return nil
}

func validateExtension(extension string) error {
	if _, ok := SupportedExtensions[extension]; !ok {
		return &InvalidExtensionError{Extension: extension}
	}
	return nil
}

// Extensions returns the supported extensions in stable order, for error
// messages and responses.
func Extensions() []string {
	out := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
