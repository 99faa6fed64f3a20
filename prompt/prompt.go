package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Func reads a one-time MFA code for the device mfaSerial. Implementations
// neither validate nor retry: the raw code goes to STS.
type Func func(mfaSerial string) (string, error)

// Methods are the prompt drivers selectable with --prompt
var Methods = map[string]Func{}

// Available returns the names of the registered drivers, sorted
func Available() []string {
	methods := []string{}
	for k := range Methods {
		methods = append(methods, k)
	}
	sort.Strings(methods)
	return methods
}

// Method returns the driver registered under s
func Method(s string) (Func, error) {
	m, ok := Methods[s]
	if !ok {
		return nil, fmt.Errorf("prompt method %q doesn't exist, choose one of %s", s, strings.Join(Available(), ", "))
	}
	return m, nil
}

// Fixed returns a Func that always answers token, for codes passed on the
// command line
func Fixed(token string) Func {
	return func(string) (string, error) {
		return token, nil
	}
}

func mfaPromptMessage(mfaSerial string) string {
	return fmt.Sprintf("Enter MFA code for %s: ", mfaSerial)
}
