package m3u8

/*
 This file defines the tags of a playlist and how their payloads are decoded.
*/

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tag names without the leading '#'.
const (
	tagExtM3U                = "EXTM3U"
	tagVersion               = "EXT-X-VERSION"
	tagTargetDuration        = "EXT-X-TARGETDURATION"
	tagMediaSequence         = "EXT-X-MEDIA-SEQUENCE"
	tagDiscontinuitySequence = "EXT-X-DISCONTINUITY-SEQUENCE"
	tagPlaylistType          = "EXT-X-PLAYLIST-TYPE"
	tagInf                   = "EXTINF"
	tagByteRange             = "EXT-X-BYTERANGE"
	tagDiscontinuity         = "EXT-X-DISCONTINUITY"
	tagKey                   = "EXT-X-KEY"
	tagMap                   = "EXT-X-MAP"
	tagProgramDateTime       = "EXT-X-PROGRAM-DATE-TIME"
	tagGap                   = "EXT-X-GAP"
	tagBitrate               = "EXT-X-BITRATE"
	tagEndList               = "EXT-X-ENDLIST"
	tagDefine                = "EXT-X-DEFINE"
	tagStart                 = "EXT-X-START"
	tagIndependentSegments   = "EXT-X-INDEPENDENT-SEGMENTS"
	tagIFramesOnly           = "EXT-X-I-FRAMES-ONLY"
	tagPartInf               = "EXT-X-PART-INF"
	tagServerControl         = "EXT-X-SERVER-CONTROL"
	tagSkip                  = "EXT-X-SKIP"
	tagPart                  = "EXT-X-PART"
	tagPreloadHint           = "EXT-X-PRELOAD-HINT"
	tagRenditionReport       = "EXT-X-RENDITION-REPORT"
	tagDateRange             = "EXT-X-DATERANGE"
	tagStreamInf             = "EXT-X-STREAM-INF"
	tagIFrameStreamInf       = "EXT-X-I-FRAME-STREAM-INF"
	tagMedia                 = "EXT-X-MEDIA"
	tagSessionData           = "EXT-X-SESSION-DATA"
	tagSessionKey            = "EXT-X-SESSION-KEY"
	tagContentSteering       = "EXT-X-CONTENT-STEERING"
)

// Tag is one decoded line of a playlist. The set of tags is closed: all
// implementations live in this package and tags it does not know are
// kept as TagUnknown.
type Tag interface {
	TagName() string
	isTag()
}

type TagExtM3U struct{}

type TagVersion struct{ Number uint8 }

type TagTargetDuration struct{ Seconds uint64 }

type TagMediaSequence struct{ Number uint64 }

type TagDiscontinuitySequence struct{ Number uint64 }

type TagPlaylistType struct{ Type MediaType }

// TagInf is EXTINF:<duration>,[<title>].
type TagInf struct {
	Duration float64
	Title    string
}

type TagByteRange struct{ ByteRange }

type TagDiscontinuity struct{}

type TagKey struct{ Key }

type TagMap struct{ Map }

type TagProgramDateTime struct{ Time time.Time }

type TagGap struct{}

// TagBitrate is EXT-X-BITRATE in kbit/s.
type TagBitrate struct{ Kbps uint64 }

type TagEndList struct{}

type TagDefine struct{ Define }

type TagStart struct{ Start }

type TagIndependentSegments struct{}

type TagIFramesOnly struct{}

type TagPartInf struct{ PartTarget float64 }

type TagServerControl struct{ ServerControl }

type TagSkip struct{ Skip }

type TagPart struct{ PartialSegment }

type TagPreloadHint struct{ PreloadHint }

type TagRenditionReport struct{ RenditionReport }

type TagDateRange struct{ DateRange }

type TagStreamInf struct{ VariantParams }

// TagIFrameStreamInf carries its URI as an attribute.
type TagIFrameStreamInf struct {
	URI string
	VariantParams
}

type TagMedia struct{ Rendition }

type TagSessionData struct{ SessionData }

type TagSessionKey struct{ Key }

type TagContentSteering struct{ ContentSteering }

// TagURI is a line that is not a tag nor a comment.
type TagURI struct{ URI string }

// TagUnknown keeps a tag this package does not decode.
type TagUnknown struct{ ExtTag }

func (TagExtM3U) TagName() string                { return tagExtM3U }
func (TagVersion) TagName() string               { return tagVersion }
func (TagTargetDuration) TagName() string        { return tagTargetDuration }
func (TagMediaSequence) TagName() string         { return tagMediaSequence }
func (TagDiscontinuitySequence) TagName() string { return tagDiscontinuitySequence }
func (TagPlaylistType) TagName() string          { return tagPlaylistType }
func (TagInf) TagName() string                   { return tagInf }
func (TagByteRange) TagName() string             { return tagByteRange }
func (TagDiscontinuity) TagName() string         { return tagDiscontinuity }
func (TagKey) TagName() string                   { return tagKey }
func (TagMap) TagName() string                   { return tagMap }
func (TagProgramDateTime) TagName() string       { return tagProgramDateTime }
func (TagGap) TagName() string                   { return tagGap }
func (TagBitrate) TagName() string               { return tagBitrate }
func (TagEndList) TagName() string               { return tagEndList }
func (TagDefine) TagName() string                { return tagDefine }
func (TagStart) TagName() string                 { return tagStart }
func (TagIndependentSegments) TagName() string   { return tagIndependentSegments }
func (TagIFramesOnly) TagName() string           { return tagIFramesOnly }
func (TagPartInf) TagName() string               { return tagPartInf }
func (TagServerControl) TagName() string         { return tagServerControl }
func (TagSkip) TagName() string                  { return tagSkip }
func (TagPart) TagName() string                  { return tagPart }
func (TagPreloadHint) TagName() string           { return tagPreloadHint }
func (TagRenditionReport) TagName() string       { return tagRenditionReport }
func (TagDateRange) TagName() string             { return tagDateRange }
func (TagStreamInf) TagName() string             { return tagStreamInf }
func (TagIFrameStreamInf) TagName() string       { return tagIFrameStreamInf }
func (TagMedia) TagName() string                 { return tagMedia }
func (TagSessionData) TagName() string           { return tagSessionData }
func (TagSessionKey) TagName() string            { return tagSessionKey }
func (TagContentSteering) TagName() string       { return tagContentSteering }
func (TagURI) TagName() string                   { return "" }
func (t TagUnknown) TagName() string             { return t.Name }

func (TagExtM3U) isTag()                {}
func (TagVersion) isTag()               {}
func (TagTargetDuration) isTag()        {}
func (TagMediaSequence) isTag()         {}
func (TagDiscontinuitySequence) isTag() {}
func (TagPlaylistType) isTag()          {}
func (TagInf) isTag()                   {}
func (TagByteRange) isTag()             {}
func (TagDiscontinuity) isTag()         {}
func (TagKey) isTag()                   {}
func (TagMap) isTag()                   {}
func (TagProgramDateTime) isTag()       {}
func (TagGap) isTag()                   {}
func (TagBitrate) isTag()               {}
func (TagEndList) isTag()               {}
func (TagDefine) isTag()                {}
func (TagStart) isTag()                 {}
func (TagIndependentSegments) isTag()   {}
func (TagIFramesOnly) isTag()           {}
func (TagPartInf) isTag()               {}
func (TagServerControl) isTag()         {}
func (TagSkip) isTag()                  {}
func (TagPart) isTag()                  {}
func (TagPreloadHint) isTag()           {}
func (TagRenditionReport) isTag()       {}
func (TagDateRange) isTag()             {}
func (TagStreamInf) isTag()             {}
func (TagIFrameStreamInf) isTag()       {}
func (TagMedia) isTag()                 {}
func (TagSessionData) isTag()           {}
func (TagSessionKey) isTag()            {}
func (TagContentSteering) isTag()       {}
func (TagURI) isTag()                   {}
func (TagUnknown) isTag()               {}

// tagParser decodes classified lines. It substitutes variables with the
// definitions seen so far, so lines must be passed in document order.
type tagParser struct {
	vars      *resolver
	timeParse func(value string) (time.Time, error)
}

// tagCtx builds errors for the tag being decoded.
type tagCtx struct {
	name    string
	payload string
}

func (c tagCtx) malformed(reason string, err error) error {
	return &MalformedTagError{Tag: c.name, Payload: c.payload, Reason: reason, Err: err}
}

func (c tagCtx) invalid(attr string, err error) error {
	return c.malformed("invalid "+attr, err)
}

func (c tagCtx) missing(attr string) error {
	return c.malformed("missing "+attr, nil)
}

// parse decodes a directive or URI line into a Tag.
func (tp *tagParser) parse(l Line) (Tag, error) {
	if l.Kind == LineURI {
		uri, err := tp.vars.expand(l.Text)
		if err != nil {
			return nil, err
		}
		return TagURI{URI: uri}, nil
	}

	c := tagCtx{name: l.Name, payload: l.Payload}
	switch l.Name {
	case tagExtM3U:
		return TagExtM3U{}, nil
	case tagVersion:
		n, err := strconv.ParseUint(strings.TrimSpace(l.Payload), 10, 8)
		if err != nil || n == 0 {
			return nil, c.malformed("expected a protocol version from 1 to 255", err)
		}
		return TagVersion{Number: uint8(n)}, nil
	case tagTargetDuration:
		n, err := parseUint(c)
		if err != nil {
			return nil, err
		}
		return TagTargetDuration{Seconds: n}, nil
	case tagMediaSequence:
		n, err := parseUint(c)
		if err != nil {
			return nil, err
		}
		return TagMediaSequence{Number: n}, nil
	case tagDiscontinuitySequence:
		n, err := parseUint(c)
		if err != nil {
			return nil, err
		}
		return TagDiscontinuitySequence{Number: n}, nil
	case tagPlaylistType:
		switch strings.TrimSpace(l.Payload) {
		case "EVENT":
			return TagPlaylistType{Type: EVENT}, nil
		case "VOD":
			return TagPlaylistType{Type: VOD}, nil
		}
		return nil, c.malformed("expected EVENT or VOD", nil)
	case tagInf:
		return parseInf(c)
	case tagByteRange:
		br, err := parseByteRange(l.Payload)
		if err != nil {
			return nil, c.malformed("", err)
		}
		return TagByteRange{br}, nil
	case tagDiscontinuity:
		return TagDiscontinuity{}, nil
	case tagProgramDateTime:
		t, err := tp.timeParse(strings.TrimSpace(l.Payload))
		if err != nil {
			return nil, c.malformed("invalid date-time", err)
		}
		return TagProgramDateTime{Time: t}, nil
	case tagGap:
		return TagGap{}, nil
	case tagBitrate:
		n, err := parseUint(c)
		if err != nil {
			return nil, err
		}
		return TagBitrate{Kbps: n}, nil
	case tagEndList:
		return TagEndList{}, nil
	case tagDefine:
		return tp.parseDefine(c)
	case tagIndependentSegments:
		return TagIndependentSegments{}, nil
	case tagIFramesOnly:
		return TagIFramesOnly{}, nil
	}

	var decode func(*tagParser, tagCtx, AttributeList) (Tag, error)
	switch l.Name {
	case tagKey:
		decode = parseKeyTag
	case tagMap:
		decode = parseMapTag
	case tagStart:
		decode = parseStart
	case tagPartInf:
		decode = parsePartInf
	case tagServerControl:
		decode = parseServerControl
	case tagSkip:
		decode = parseSkip
	case tagPart:
		decode = parsePart
	case tagPreloadHint:
		decode = parsePreloadHint
	case tagRenditionReport:
		decode = parseRenditionReport
	case tagDateRange:
		decode = (*tagParser).parseDateRange
	case tagStreamInf:
		decode = parseStreamInfTag
	case tagIFrameStreamInf:
		decode = parseIFrameStreamInfTag
	case tagMedia:
		decode = parseMedia
	case tagSessionData:
		decode = parseSessionData
	case tagSessionKey:
		decode = parseSessionKey
	case tagContentSteering:
		decode = parseContentSteering
	default:
		return TagUnknown{ExtTag{Name: l.Name, Payload: l.Payload}}, nil
	}
	attrs, err := ParseAttributeList(l.Payload)
	if err != nil {
		return nil, c.malformed("", err)
	}
	if attrs, err = tp.vars.expandAttributes(attrs); err != nil {
		return nil, err
	}
	return decode(tp, c, attrs)
}

func parseUint(c tagCtx) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(c.payload), 10, 64)
	if err != nil {
		return 0, c.malformed("expected decimal-integer", err)
	}
	return n, nil
}

func parseInf(c tagCtx) (Tag, error) {
	d, title, _ := strings.Cut(c.payload, ",")
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, c.missing("duration")
	}
	if !isDecimalFloat(d) {
		return nil, c.malformed("invalid duration "+strconv.Quote(d), nil)
	}
	duration, err := strconv.ParseFloat(d, 64)
	if err != nil {
		return nil, c.malformed("invalid duration", err)
	}
	if duration < 0 {
		return nil, c.malformed("negative duration", nil)
	}
	return TagInf{Duration: duration, Title: title}, nil
}

// parseByteRange parses <n>[@<o>].
func parseByteRange(s string) (ByteRange, error) {
	n, o, hasOffset := strings.Cut(strings.TrimSpace(s), "@")
	length, err := strconv.ParseUint(n, 10, 64)
	if err != nil {
		return ByteRange{}, fmt.Errorf("byterange sub-range length value parsing error: %w", err)
	}
	br := ByteRange{Length: length}
	if hasOffset {
		offset, err := strconv.ParseUint(o, 10, 64)
		if err != nil {
			return ByteRange{}, fmt.Errorf("byterange sub-range offset value parsing error: %w", err)
		}
		br.Offset = &offset
	}
	return br, nil
}

// parseDefine declares the variable right away so that it is visible to
// the following lines. Definitions are not subject to substitution.
func (tp *tagParser) parseDefine(c tagCtx) (Tag, error) {
	attrs, err := ParseAttributeList(c.payload)
	if err != nil {
		return nil, c.malformed("", err)
	}
	var d Define
	var hasValue bool
	for _, a := range attrs {
		switch a.Name {
		case "NAME":
			d.Name, d.Type = a.Value.Raw, VALUE
		case "VALUE":
			d.Value, hasValue = a.Value.Raw, true
		case "IMPORT":
			d.Name, d.Type = a.Value.Raw, IMPORT
		case "QUERYPARAM":
			d.Name, d.Type = a.Value.Raw, QUERYPARAM
		}
	}
	switch {
	case !validVariableName(d.Name):
		return nil, c.malformed("invalid variable name "+strconv.Quote(d.Name), nil)
	case d.Type == VALUE && !hasValue:
		return nil, c.missing("VALUE")
	}
	d, err = tp.vars.define(d)
	if err != nil {
		var mt *MalformedTagError
		if errors.As(err, &mt) {
			mt.Payload = c.payload
		}
		return nil, err
	}
	return TagDefine{d}, nil
}

func parseKeyParams(c tagCtx, attrs AttributeList) (Key, error) {
	var key Key
	for _, a := range attrs {
		switch a.Name {
		case "METHOD":
			key.Method = a.Value.Raw // NONE, AES-128, SAMPLE-AES, SAMPLE-AES-CTR
		case "URI":
			key.URI = a.Value.Raw
		case "IV":
			if err := a.Value.expect(KindHexSequence); err != nil {
				return key, c.invalid("IV", err)
			}
			key.IV = a.Value.Raw
		case "KEYFORMAT":
			key.Keyformat = a.Value.Raw
		case "KEYFORMATVERSIONS":
			key.Keyformatversions = a.Value.Raw
		}
	}
	if key.Method == "" {
		return key, c.missing("METHOD")
	}
	if key.Method != MethodNone && key.URI == "" {
		return key, c.missing("URI")
	}
	return key, nil
}

func parseKeyTag(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	key, err := parseKeyParams(c, attrs)
	if err != nil {
		return nil, err
	}
	return TagKey{key}, nil
}

func parseSessionKey(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	key, err := parseKeyParams(c, attrs)
	if err != nil {
		return nil, err
	}
	if key.Method == MethodNone {
		return nil, c.malformed("METHOD must not be NONE", nil)
	}
	return TagSessionKey{key}, nil
}

func parseMapTag(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var m Map
	for _, a := range attrs {
		switch a.Name {
		case "URI":
			m.URI = a.Value.Raw
		case "BYTERANGE":
			br, err := parseByteRange(a.Value.Raw)
			if err != nil {
				return nil, c.invalid("BYTERANGE", err)
			}
			m.ByteRange = &br
		}
	}
	if m.URI == "" {
		return nil, c.missing("URI")
	}
	return TagMap{m}, nil
}

func parseStart(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var (
		s   Start
		err error
	)
	offset, ok := attrs.Get("TIME-OFFSET")
	if !ok {
		return nil, c.missing("TIME-OFFSET")
	}
	if s.TimeOffset, err = offset.Float(); err != nil {
		return nil, c.invalid("TIME-OFFSET", err)
	}
	if v, ok := attrs.Get("PRECISE"); ok {
		if s.Precise, err = v.Bool(); err != nil {
			return nil, c.invalid("PRECISE", err)
		}
	}
	return TagStart{s}, nil
}

func parsePartInf(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	v, ok := attrs.Get("PART-TARGET")
	if !ok {
		return nil, c.missing("PART-TARGET")
	}
	target, err := v.Float()
	if err != nil {
		return nil, c.invalid("PART-TARGET", err)
	}
	return TagPartInf{PartTarget: target}, nil
}

func floatPtr(v Value) (*float64, error) {
	f, err := v.Float()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func uintPtr(v Value) (*uint64, error) {
	n, err := v.Uint()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseServerControl(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var (
		sc  ServerControl
		err error
	)
	for _, a := range attrs {
		switch a.Name {
		case "CAN-SKIP-UNTIL":
			sc.CanSkipUntil, err = floatPtr(a.Value)
		case "CAN-SKIP-DATERANGES":
			sc.CanSkipDateRanges, err = a.Value.Bool()
		case "HOLD-BACK":
			sc.HoldBack, err = floatPtr(a.Value)
		case "PART-HOLD-BACK":
			sc.PartHoldBack, err = floatPtr(a.Value)
		case "CAN-BLOCK-RELOAD":
			sc.CanBlockReload, err = a.Value.Bool()
		}
		if err != nil {
			return nil, c.invalid(a.Name, err)
		}
	}
	return TagServerControl{sc}, nil
}

func parseSkip(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var s Skip
	v, ok := attrs.Get("SKIPPED-SEGMENTS")
	if !ok {
		return nil, c.missing("SKIPPED-SEGMENTS")
	}
	n, err := v.Uint()
	if err != nil {
		return nil, c.invalid("SKIPPED-SEGMENTS", err)
	}
	s.SkippedSegments = n
	if v, ok := attrs.Get("RECENTLY-REMOVED-DATERANGES"); ok && v.Raw != "" {
		s.RecentlyRemovedDateRanges = strings.Split(v.Raw, "\t")
	}
	return TagSkip{s}, nil
}

func parsePart(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var (
		p           PartialSegment
		err         error
		hasDuration bool
	)
	for _, a := range attrs {
		switch a.Name {
		case "URI":
			p.URI = a.Value.Raw
		case "DURATION":
			p.Duration, err = a.Value.Float()
			hasDuration = true
		case "INDEPENDENT":
			p.Independent, err = a.Value.Bool()
		case "GAP":
			p.Gap, err = a.Value.Bool()
		case "BYTERANGE":
			var br ByteRange
			if br, err = parseByteRange(a.Value.Raw); err == nil {
				p.ByteRange = &br
			}
		}
		if err != nil {
			return nil, c.invalid(a.Name, err)
		}
	}
	switch {
	case p.URI == "":
		return nil, c.missing("URI")
	case !hasDuration:
		return nil, c.missing("DURATION")
	}
	return TagPart{p}, nil
}

func parsePreloadHint(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var (
		h   PreloadHint
		err error
	)
	for _, a := range attrs {
		switch a.Name {
		case "TYPE":
			if a.Value.Raw != "PART" && a.Value.Raw != "MAP" {
				return nil, c.malformed("TYPE must be PART or MAP", nil)
			}
			h.Type = a.Value.Raw
		case "URI":
			h.URI = a.Value.Raw
		case "BYTERANGE-START":
			h.ByteRangeStart, err = a.Value.Uint()
		case "BYTERANGE-LENGTH":
			h.ByteRangeLength, err = uintPtr(a.Value)
		}
		if err != nil {
			return nil, c.invalid(a.Name, err)
		}
	}
	switch {
	case h.Type == "":
		return nil, c.missing("TYPE")
	case h.URI == "":
		return nil, c.missing("URI")
	}
	return TagPreloadHint{h}, nil
}

func parseRenditionReport(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var (
		r   RenditionReport
		err error
	)
	for _, a := range attrs {
		switch a.Name {
		case "URI":
			r.URI = a.Value.Raw
		case "LAST-MSN":
			r.LastMSN, err = uintPtr(a.Value)
		case "LAST-PART":
			r.LastPart, err = uintPtr(a.Value)
		}
		if err != nil {
			return nil, c.invalid(a.Name, err)
		}
	}
	if r.URI == "" {
		return nil, c.missing("URI")
	}
	return TagRenditionReport{r}, nil
}

func (tp *tagParser) parseDateRange(c tagCtx, attrs AttributeList) (Tag, error) {
	var dr DateRange
	for _, a := range attrs {
		var err error
		switch a.Name {
		case "ID":
			dr.ID = a.Value.Raw
		case "CLASS":
			dr.Class = a.Value.Raw
		case "START-DATE":
			dr.StartDate, err = tp.timeParse(a.Value.Raw)
		case "END-DATE":
			var end time.Time
			if end, err = tp.timeParse(a.Value.Raw); err == nil {
				dr.EndDate = &end
			}
		case "CUE":
			dr.Cue = a.Value.Raw
		case "DURATION":
			dr.Duration, err = floatPtr(a.Value)
		case "PLANNED-DURATION":
			dr.PlannedDuration, err = floatPtr(a.Value)
		case "SCTE35-CMD":
			dr.SCTE35Cmd, err = scte35Hex(a.Value)
		case "SCTE35-OUT":
			dr.SCTE35Out, err = scte35Hex(a.Value)
		case "SCTE35-IN":
			dr.SCTE35In, err = scte35Hex(a.Value)
		case "END-ON-NEXT":
			dr.EndOnNext, err = a.Value.Bool()
		default:
			if strings.HasPrefix(a.Name, "X-") {
				dr.XAttrs = append(dr.XAttrs, a)
			}
		}
		if err != nil {
			return nil, c.invalid(a.Name, err)
		}
	}
	if dr.ID == "" {
		return nil, c.missing("ID")
	}
	return TagDateRange{dr}, nil
}

func scte35Hex(v Value) (string, error) {
	if err := v.expect(KindHexSequence); err != nil {
		return "", err
	}
	return v.Raw, nil
}

// parseStreamInf decodes the attributes shared by EXT-X-STREAM-INF and
// EXT-X-I-FRAME-STREAM-INF and returns the URI attribute separately.
func parseStreamInf(c tagCtx, attrs AttributeList) (VariantParams, string, error) {
	var (
		vp           VariantParams
		uri          string
		hasBandwidth bool
	)
	for _, a := range attrs {
		var err error
		switch a.Name {
		case "BANDWIDTH":
			vp.Bandwidth, err = a.Value.Uint()
			hasBandwidth = true
		case "AVERAGE-BANDWIDTH":
			vp.AverageBandwidth, err = a.Value.Uint()
		case "SCORE":
			vp.Score, err = a.Value.Float()
		case "CODECS":
			vp.Codecs = a.Value.Raw
		case "SUPPLEMENTAL-CODECS":
			vp.SupplementalCodecs = a.Value.Raw
		case "RESOLUTION": // decimal-resolution WxH
			var res Resolution
			if res, err = a.Value.Resolution(); err == nil {
				vp.Resolution = &res
			}
		case "FRAME-RATE":
			vp.FrameRate, err = a.Value.Float()
		case "HDCP-LEVEL": // NONE, TYPE-0, TYPE-1
			vp.HDCPLevel = a.Value.Raw
		case "ALLOWED-CPC":
			vp.AllowedCPC = a.Value.Raw
		case "VIDEO-RANGE": // SDR, HLG, PQ
			vp.VideoRange = a.Value.Raw
		case "REQ-VIDEO-LAYOUT":
			vp.ReqVideoLayout = a.Value.Raw
		case "STABLE-VARIANT-ID":
			vp.StableVariantID = a.Value.Raw
		case "AUDIO":
			vp.Audio = a.Value.Raw
		case "VIDEO":
			vp.Video = a.Value.Raw
		case "SUBTITLES":
			vp.Subtitles = a.Value.Raw
		case "CLOSED-CAPTIONS": // NONE or quoted group ID
			vp.Captions = a.Value.Raw
		case "PATHWAY-ID":
			vp.PathwayID = a.Value.Raw
		case "URI":
			uri = a.Value.Raw
		case "PROGRAM-ID": // Deprecated from version 6
			var id int64
			if id, err = a.Value.Int(); err == nil {
				vp.ProgramID = &id
			}
		case "NAME":
			vp.Name = a.Value.Raw
		}
		if err != nil {
			return vp, uri, c.invalid(a.Name, err)
		}
	}
	if !hasBandwidth {
		return vp, uri, c.missing("BANDWIDTH")
	}
	return vp, uri, nil
}

func parseStreamInfTag(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	vp, _, err := parseStreamInf(c, attrs)
	if err != nil {
		return nil, err
	}
	return TagStreamInf{vp}, nil
}

func parseIFrameStreamInfTag(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	vp, uri, err := parseStreamInf(c, attrs)
	if err != nil {
		return nil, err
	}
	if uri == "" {
		return nil, c.missing("URI")
	}
	vp.Iframe = true
	return TagIFrameStreamInf{URI: uri, VariantParams: vp}, nil
}

func parseMedia(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var r Rendition
	for _, a := range attrs {
		var err error
		switch a.Name {
		case "TYPE":
			switch a.Value.Raw {
			case RenditionAudio, RenditionVideo, RenditionSubtitles, RenditionCaptions:
				r.Type = a.Value.Raw
			default:
				return nil, c.malformed("unknown TYPE "+strconv.Quote(a.Value.Raw), nil)
			}
		case "URI":
			r.URI = a.Value.Raw
		case "GROUP-ID":
			r.GroupID = a.Value.Raw
		case "LANGUAGE":
			r.Language = a.Value.Raw
		case "ASSOC-LANGUAGE":
			r.AssocLanguage = a.Value.Raw
		case "NAME":
			r.Name = a.Value.Raw
		case "STABLE-RENDITION-ID":
			r.StableRenditionID = a.Value.Raw
		case "DEFAULT":
			r.Default, err = a.Value.Bool()
		case "AUTOSELECT":
			r.Autoselect, err = a.Value.Bool()
		case "FORCED":
			r.Forced, err = a.Value.Bool()
		case "INSTREAM-ID":
			r.InstreamID = a.Value.Raw
		case "BIT-DEPTH":
			r.BitDepth, err = a.Value.Uint()
		case "SAMPLE-RATE":
			r.SampleRate, err = a.Value.Uint()
		case "CHARACTERISTICS":
			r.Characteristics = a.Value.Raw
		case "CHANNELS":
			r.Channels = a.Value.Raw
		}
		if err != nil {
			return nil, c.invalid(a.Name, err)
		}
	}
	switch {
	case r.Type == "":
		return nil, c.missing("TYPE")
	case r.GroupID == "":
		return nil, c.missing("GROUP-ID")
	case r.Name == "":
		return nil, c.missing("NAME")
	case r.Type == RenditionCaptions && r.InstreamID == "":
		return nil, c.missing("INSTREAM-ID")
	}
	return TagMedia{r}, nil
}

func parseSessionData(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	sd := SessionData{
		Format: "JSON",
	}
	for _, a := range attrs {
		switch a.Name {
		case "DATA-ID":
			sd.DataID = a.Value.Raw
		case "VALUE":
			sd.Value = a.Value.Raw
		case "URI":
			sd.URI = a.Value.Raw
		case "FORMAT":
			switch a.Value.Raw {
			case "JSON", "RAW":
				sd.Format = a.Value.Raw
			default:
				return nil, c.malformed("invalid FORMAT "+strconv.Quote(a.Value.Raw), nil)
			}
		case "LANGUAGE":
			sd.Language = a.Value.Raw
		}
	}
	if sd.DataID == "" {
		return nil, c.missing("DATA-ID")
	}
	return TagSessionData{sd}, nil
}

func parseContentSteering(_ *tagParser, c tagCtx, attrs AttributeList) (Tag, error) {
	var cs ContentSteering
	for _, a := range attrs {
		switch a.Name {
		case "SERVER-URI":
			cs.ServerURI = a.Value.Raw
		case "PATHWAY-ID":
			cs.PathwayID = a.Value.Raw
		}
	}
	if cs.ServerURI == "" {
		return nil, c.missing("SERVER-URI")
	}
	return TagContentSteering{cs}, nil
}
