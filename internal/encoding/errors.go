package encoding

import "fmt"

// UnknownModelError reports a model name with no known alias mapping and no
// configured fallback.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q (run 'quicktoken encodings' for supported names)", e.Model)
}

// VocabLoadError reports a rank table that is missing, unreadable, or failed
// checksum verification.
type VocabLoadError struct {
	Encoding string
	Err      error
}

func (e *VocabLoadError) Error() string {
	return fmt.Sprintf("load vocabulary for %s: %v", e.Encoding, e.Err)
}

func (e *VocabLoadError) Unwrap() error { return e.Err }
