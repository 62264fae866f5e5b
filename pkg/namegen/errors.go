package namegen

import (
	"fmt"
	"strings"
)

// LearnErrorCode classifies why a sample set was rejected.
type LearnErrorCode int

const (
	// InsufficientTokens means a Markov sample produced fewer than three tokens.
	InsufficientTokens LearnErrorCode = iota
	// WrongSampleKind means the sample kind does not match the engine.
	WrongSampleKind
	// LabelLengthMismatch means a Grammar sample has the wrong number of columns.
	LabelLengthMismatch
	// ReservedLabelPrefix means a Grammar label uses the anonymous slot prefix.
	ReservedLabelPrefix
	// PartNotFound means a Name was asked to learn into a part it does not have.
	PartNotFound
)

func (c LearnErrorCode) String() string {
	switch c {
	case InsufficientTokens:
		return "insufficient_tokens"
	case WrongSampleKind:
		return "wrong_sample_kind"
	case LabelLengthMismatch:
		return "label_length_mismatch"
	case ReservedLabelPrefix:
		return "reserved_label_prefix"
	case PartNotFound:
		return "part_not_found"
	default:
		return fmt.Sprintf("learn_error_%d", int(c))
	}
}

// LearnError is returned when a sample set cannot be learned. The engine is
// left exactly as it was before the failing call.
type LearnError struct {
	Code        LearnErrorCode `json:"code"`
	Description string         `json:"description"`
	Sample      *Sample        `json:"sample,omitempty"`
}

// Sentinel errors for use with errors.Is. Only the code is compared.
var (
	ErrInsufficientTokens  = &LearnError{Code: InsufficientTokens, Description: "3 or more tokens required"}
	ErrWrongSampleKind     = &LearnError{Code: WrongSampleKind, Description: "incorrect sample kind"}
	ErrLabelLengthMismatch = &LearnError{Code: LabelLengthMismatch, Description: "token lengths must match"}
	ErrReservedLabelPrefix = &LearnError{Code: ReservedLabelPrefix, Description: "label uses reserved prefix"}
	ErrPartNotFound        = &LearnError{Code: PartNotFound, Description: "part not found"}
)

func newLearnError(code LearnErrorCode, sample *Sample, format string, args ...any) *LearnError {
	var s *Sample
	if sample != nil {
		c := *sample
		s = &c
	}
	return &LearnError{Code: code, Description: fmt.Sprintf(format, args...), Sample: s}
}

func (e *LearnError) Error() string {
	if e.Sample != nil {
		return fmt.Sprintf("learn error (%s) in sample %s: %s", e.Code, describeSample(*e.Sample), e.Description)
	}
	return fmt.Sprintf("learn error (%s): %s", e.Code, e.Description)
}

// Is matches any *LearnError with the same code.
func (e *LearnError) Is(target error) bool {
	t, ok := target.(*LearnError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func describeSample(s Sample) string {
	if s.Kind() == KindTokens {
		return "[" + strings.Join(s.Tokens, " ") + "]"
	}
	return fmt.Sprintf("%q", s.Word)
}

// ValidationError describes a broken invariant in an engine's state. It is a
// diagnostic; engines built only through Learn never produce one.
type ValidationError struct {
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

func newValidationError(kind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Name, e.Message)
}

// WithName returns a copy of the error attributed to the named part.
func (e *ValidationError) WithName(name string) *ValidationError {
	return &ValidationError{Kind: e.Kind, Name: name, Message: e.Message}
}
