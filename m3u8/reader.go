package m3u8

/*
 This file defines functions related to playlist parsing.
*/

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
)

// Mode selects how tag-level errors are handled.
type Mode uint8

const (
	// Lenient records tag-level errors as diagnostics of the playlist and
	// leaves the affected fields unset.
	Lenient Mode = iota
	// Strict returns the first tag-level error.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Options configure a single decoding. The zero value decodes in Lenient
// mode without logging.
type Options struct {
	Mode Mode

	// Imports supplies the values of EXT-X-DEFINE:IMPORT variables,
	// normally the variables of the multivariant playlist.
	Imports map[string]string

	// QueryParams supplies the values of EXT-X-DEFINE:QUERYPARAM
	// variables, normally the query of the playlist URI.
	QueryParams map[string]string

	// TimeParse parses EXT-X-PROGRAM-DATE-TIME and EXT-X-DATERANGE dates.
	// Available variants:
	//   - FullTimeParse - implements full featured ISO/IEC 8601:2004 (default)
	//   - StrictTimeParse - implements only RFC3339 Nanoseconds format
	TimeParse func(value string) (time.Time, error)

	// Logger receives one debug record per diagnostic.
	Logger hclog.Logger
}

// entry is a classified line with its decoded tag, or the error that
// prevented decoding it.
type entry struct {
	line Line
	tag  Tag
	err  error
}

// decoder holds the state of one Decode call.
type decoder struct {
	opts        Options
	log         hclog.Logger
	diags       []Diagnostic
	versionLine int
}

func newDecoder(opts Options) *decoder {
	if opts.TimeParse == nil {
		opts.TimeParse = FullTimeParse
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &decoder{opts: opts, log: log}
}

// Decode detects the type of playlist and decodes it. Errors that concern
// the whole input are always returned without a playlist: invalid UTF-8,
// mixed media and multivariant tags, unresolved variables and an
// EXT-X-STREAM-INF without URI. Other problems are returned in Strict mode
// and kept as playlist diagnostics in Lenient mode.
func Decode(data []byte, opts Options) (Playlist, error) {
	return newDecoder(opts).decode(data)
}

// DecodeFrom detects type of playlist and decodes it from an io.Reader.
func DecodeFrom(reader io.Reader, opts Options) (Playlist, error) {
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(reader)
	if err != nil {
		return nil, err
	}
	return Decode(buf.Bytes(), opts)
}

// DecodeMedia decodes data that must be a media playlist.
func DecodeMedia(data []byte, opts Options) (*MediaPlaylist, error) {
	p, err := Decode(data, opts)
	if err != nil {
		return nil, err
	}
	media, ok := p.(*MediaPlaylist)
	if !ok {
		return nil, fmt.Errorf("%w: got %s playlist", ErrUnexpectedPlaylistType, p.Type())
	}
	return media, nil
}

// DecodeMultivariant decodes data that must be a multivariant playlist.
func DecodeMultivariant(data []byte, opts Options) (*MultivariantPlaylist, error) {
	p, err := Decode(data, opts)
	if err != nil {
		return nil, err
	}
	mv, ok := p.(*MultivariantPlaylist)
	if !ok {
		return nil, fmt.Errorf("%w: got %s playlist", ErrUnexpectedPlaylistType, p.Type())
	}
	return mv, nil
}

func (d *decoder) decode(data []byte) (Playlist, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid byte at offset %d", ErrInvalidEncoding, invalidOffset(data))
	}
	entries, err := d.scan(string(data))
	if err != nil {
		return nil, err
	}
	listType, err := classify(entries)
	if err != nil {
		return nil, err
	}
	d.log.Trace("classified playlist", "type", listType.String(), "entries", len(entries))

	switch listType {
	case MULTIVARIANT:
		p, err := d.assembleMultivariant(entries)
		if err != nil {
			return nil, err
		}
		required, reason := p.CalcMinVersion()
		d.checkVersion(p.Version, required, reason)
		p.Diagnostics = d.diagnostics()
		return p, nil
	default:
		p, err := d.assembleMedia(entries)
		if err != nil {
			return nil, err
		}
		required, reason := p.CalcMinVersion()
		d.checkVersion(p.Version, required, reason)
		p.Diagnostics = d.diagnostics()
		return p, nil
	}
}

// scan classifies and decodes every line. Comments and blank lines are
// dropped.
func (d *decoder) scan(text string) ([]entry, error) {
	tp := &tagParser{
		vars:      newResolver(d.opts.Imports, d.opts.QueryParams),
		timeParse: d.opts.TimeParse,
	}
	var entries []entry
	err := splitLines(text, func(num int, raw string) error {
		l := ClassifyLine(raw)
		l.Num = num
		if l.Kind == LineIgnorable {
			return nil
		}
		if len(entries) == 0 && l.Name != tagExtM3U {
			d.warn(0, ErrExtM3UAbsent)
		}
		if l.Name == tagVersion {
			d.versionLine = num
		}
		tag, err := tp.parse(l)
		if err != nil {
			if isFatal(err) {
				return fmt.Errorf("line %d: %w", num, err)
			}
			if err := d.report(num, SeverityError, err); err != nil {
				return err
			}
		}
		entries = append(entries, entry{line: l, tag: tag, err: err})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		d.warn(0, ErrExtM3UAbsent)
	}
	return entries, nil
}

// report records a diagnostic. In Strict mode an error is returned as is
// and decoding must stop.
func (d *decoder) report(line int, sev Severity, err error) error {
	d.log.Debug("playlist diagnostic", "line", line, "severity", sev.String(), "error", err)
	diag := Diagnostic{Line: line, Severity: sev, Err: err}
	if sev == SeverityError && d.opts.Mode == Strict {
		return diag
	}
	d.diags = append(d.diags, diag)
	return nil
}

func (d *decoder) warn(line int, err error) {
	_ = d.report(line, SeverityWarning, err)
}

// malformedAt reports whether an error was already recorded for line.
func (d *decoder) malformedAt(line int) bool {
	if line == 0 {
		return false
	}
	for _, diag := range d.diags {
		if diag.Line == line && diag.Severity == SeverityError {
			return true
		}
	}
	return false
}

// checkVersion compares the declared EXT-X-VERSION with the version the
// decoded content requires.
func (d *decoder) checkVersion(declared, required uint8, reason string) {
	switch {
	case declared > maxVer:
		d.warn(d.versionLine, &UnsupportedFeatureError{Name: fmt.Sprintf("protocol version %d", declared)})
	case declared != 0 && required > minVer && declared < required:
		d.warn(d.versionLine, fmt.Errorf("version %d, %s requires %d: %w", declared, reason, required, ErrVersionTooLow))
	}
}

// diagnostics returns the recorded diagnostics ordered by line.
func (d *decoder) diagnostics() []Diagnostic {
	slices.SortStableFunc(d.diags, func(a, b Diagnostic) int {
		return cmp.Compare(a.Line, b.Line)
	})
	return d.diags
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}

// StrictTimeParse implements RFC3339 with Nanoseconds accuracy.
func StrictTimeParse(value string) (time.Time, error) {
	return time.Parse(DATETIME, value)
}

// FullTimeParse implements ISO/IEC 8601:2004.
func FullTimeParse(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999Z07",
	}
	var (
		err error
		t   time.Time
	)
	for _, layout := range layouts {
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return t, err
}
