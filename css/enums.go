package css

import "fmt"

// Specification of how the marker inserter annotates selectors with
// source-location markers.
// ENUM(off, allSelectors, skipBareElements, skipIsolatedBareElements)
type MarkerInjectionMode int

const (
	MarkerInjectionOff MarkerInjectionMode = iota
	MarkerInjectionAllSelectors
	MarkerInjectionSkipBareElements
	MarkerInjectionSkipIsolatedBareElements
)

var markerInjectionModeNames = [...]string{"off", "allSelectors", "skipBareElements", "skipIsolatedBareElements"}

func (m MarkerInjectionMode) String() string {
	if m < 0 || int(m) >= len(markerInjectionModeNames) {
		return fmt.Sprintf("MarkerInjectionMode(%d)", int(m))
	}
	return markerInjectionModeNames[m]
}

// ParseMarkerInjectionMode parses a MarkerInjectionMode from its string form.
func ParseMarkerInjectionMode(s string) (MarkerInjectionMode, error) {
	for i, n := range markerInjectionModeNames {
		if n == s {
			return MarkerInjectionMode(i), nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid MarkerInjectionMode", s)
}

func (m MarkerInjectionMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

func (m *MarkerInjectionMode) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseMarkerInjectionMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarkerInjectionModeNames returns all recognised mode names, in declaration order.
func MarkerInjectionModeNames() []string {
	out := make([]string, len(markerInjectionModeNames))
	copy(out, markerInjectionModeNames[:])
	return out
}

// Specification of the behaviour when an import-flattening policy is
// triggered (circular or unsupported import).
// ENUM(raise, warnAndEmpty)
type ImportPolicy int

const (
	ImportPolicyRaise ImportPolicy = iota
	ImportPolicyWarnAndEmpty
)

var importPolicyNames = [...]string{"raise", "warnAndEmpty"}

func (p ImportPolicy) String() string {
	if p < 0 || int(p) >= len(importPolicyNames) {
		return fmt.Sprintf("ImportPolicy(%d)", int(p))
	}
	return importPolicyNames[p]
}

func ParseImportPolicy(s string) (ImportPolicy, error) {
	for i, n := range importPolicyNames {
		if n == s {
			return ImportPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid ImportPolicy", s)
}

func (p ImportPolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *ImportPolicy) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseImportPolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Specification of the behaviour when the LESS compiler engine reports an error.
// ENUM(raise, warnAndContinue)
type CompilerErrorPolicy int

const (
	CompilerErrorRaise CompilerErrorPolicy = iota
	CompilerErrorWarnAndContinue
)

var compilerErrorPolicyNames = [...]string{"raise", "warnAndContinue"}

func (p CompilerErrorPolicy) String() string {
	if p < 0 || int(p) >= len(compilerErrorPolicyNames) {
		return fmt.Sprintf("CompilerErrorPolicy(%d)", int(p))
	}
	return compilerErrorPolicyNames[p]
}

func ParseCompilerErrorPolicy(s string) (CompilerErrorPolicy, error) {
	for i, n := range compilerErrorPolicyNames {
		if n == s {
			return CompilerErrorPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid CompilerErrorPolicy", s)
}

func (p CompilerErrorPolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *CompilerErrorPolicy) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseCompilerErrorPolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Specification of the behaviour when a disk cache file fails to parse.
// ENUM(delete, ignore)
type InvalidCacheBehaviour int

const (
	InvalidCacheDelete InvalidCacheBehaviour = iota
	InvalidCacheIgnore
)

var invalidCacheBehaviourNames = [...]string{"delete", "ignore"}

func (b InvalidCacheBehaviour) String() string {
	if b < 0 || int(b) >= len(invalidCacheBehaviourNames) {
		return fmt.Sprintf("InvalidCacheBehaviour(%d)", int(b))
	}
	return invalidCacheBehaviourNames[b]
}

func ParseInvalidCacheBehaviour(s string) (InvalidCacheBehaviour, error) {
	for i, n := range invalidCacheBehaviourNames {
		if n == s {
			return InvalidCacheBehaviour(i), nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid InvalidCacheBehaviour", s)
}

func (b InvalidCacheBehaviour) MarshalYAML() (any, error) {
	return b.String(), nil
}

func (b *InvalidCacheBehaviour) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseInvalidCacheBehaviour(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}
