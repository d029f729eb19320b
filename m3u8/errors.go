package m3u8

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidEncoding = errors.New("playlist is not valid UTF-8")
var ErrAmbiguousPlaylistType = errors.New("playlist mixes media and multivariant tags")
var ErrUnassociatedVariantAttributes = errors.New("EXT-X-STREAM-INF is not followed by a URI")
var ErrUnexpectedPlaylistType = errors.New("unexpected playlist type")
var ErrNotYesOrNo = errors.New("value must be YES or NO")

// Problems reported as diagnostics.
var (
	ErrExtM3UAbsent          = errors.New("#EXTM3U absent")
	ErrContentAfterEndList   = errors.New("content after EXT-X-ENDLIST")
	ErrMissingDuration       = errors.New("URI without EXTINF")
	ErrMissingTargetDuration = errors.New("EXT-X-TARGETDURATION missing or zero")
	ErrDanglingSegmentTags   = errors.New("segment tags without a following URI")
	ErrHeaderAfterSegment    = errors.New("tag must appear before the first segment")
	ErrOrphanURI             = errors.New("URI without EXT-X-STREAM-INF")
	ErrUnknownRenditionGroup = errors.New("variant references an undeclared rendition group")
	ErrVersionTooLow         = errors.New("EXT-X-VERSION is lower than the playlist requires")
)

// MalformedTagError reports a tag whose payload could not be decoded.
type MalformedTagError struct {
	Tag     string // Tag name without the leading '#'
	Payload string // Raw payload after the ':'
	Reason  string
	Err     error
}

func (e *MalformedTagError) Error() string {
	msg := "malformed " + e.Tag
	if e.Payload != "" {
		msg += " " + strconv.Quote(e.Payload)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTagError) Unwrap() error { return e.Err }

// MalformedAttributeListError reports a payload that does not follow the
// attribute-list grammar.
type MalformedAttributeListError struct {
	Payload string
	Offset  int // Byte offset in Payload where parsing stopped
	Reason  string
}

func (e *MalformedAttributeListError) Error() string {
	return fmt.Sprintf("malformed attribute list %q at offset %d: %s", e.Payload, e.Offset, e.Reason)
}

// UnresolvedVariableError reports a {$name} reference to a variable that
// has not been defined before its use, or an EXT-X-DEFINE IMPORT or
// QUERYPARAM whose value was not supplied.
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable %q", e.Name)
}

// UnsupportedFeatureError marks input that is valid but that this package
// does not decode yet.
type UnsupportedFeatureError struct {
	Name string
}

func (e *UnsupportedFeatureError) Error() string {
	return "unsupported feature: " + e.Name
}

// Severity of a Diagnostic.
type Severity uint8

const (
	// SeverityError marks invalid input. Strict mode stops at the first one.
	SeverityError Severity = iota
	// SeverityWarning marks unusual input that is still decoded in full.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a problem found while decoding, located by its line number
// (1-based, 0 if it concerns the whole playlist).
type Diagnostic struct {
	Line     int
	Severity Severity
	Err      error
}

func (d Diagnostic) Error() string {
	if d.Line == 0 {
		return d.Severity.String() + ": " + d.Err.Error()
	}
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Severity, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// HasErrors reports whether any diagnostic has SeverityError.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// JoinDiagnostics merges diagnostics into a single error, nil if there are none.
func JoinDiagnostics(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// isFatal reports errors that abort decoding in any mode.
func isFatal(err error) bool {
	var unresolved *UnresolvedVariableError
	return errors.As(err, &unresolved) ||
		errors.Is(err, ErrInvalidEncoding) ||
		errors.Is(err, ErrAmbiguousPlaylistType) ||
		errors.Is(err, ErrUnassociatedVariantAttributes)
}
