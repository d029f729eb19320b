package m3u8

/*
 This file assembles media playlists from decoded tags.
*/

import (
	"path"
	"slices"
	"strings"
	"time"
)

// persistentContext holds the state that carries over from one segment to
// the next until a tag redefines it.
type persistentContext struct {
	keys             []Key // EXT-X-KEY tags in effect
	xmap             *Map  // EXT-X-MAP in effect
	seqID            uint64
	discontinuitySeq uint64
}

// pendingContext holds the tags of the segment being built. A URI commits
// the segment and resets it.
type pendingContext struct {
	line            int // first segment tag, 0 if none
	hasInf          bool
	badInf          bool // EXTINF was present but malformed
	duration        float64
	title           string
	byteRange       *ByteRange
	discontinuity   bool
	keysDeclared    bool // an EXT-X-KEY was seen since the last URI
	programDateTime *time.Time
	gap             bool
	bitrate         *uint64
	parts           []PartialSegment
	extraTags       []ExtTag
	diagnostics     []Diagnostic
}

// dangling reports whether the pending context holds segment tags that no
// URI has consumed. Parts and unknown tags are not counted, they are kept
// by the playlist when no segment follows.
func (p pendingContext) dangling() bool {
	return p.hasInf || p.byteRange != nil || p.discontinuity || p.programDateTime != nil ||
		p.gap || p.bitrate != nil || len(p.diagnostics) > 0
}

// segmentTags are the tags whose errors stay local to a segment.
var segmentTags = map[string]bool{
	tagInf:             true,
	tagByteRange:       true,
	tagDiscontinuity:   true,
	tagKey:             true,
	tagMap:             true,
	tagProgramDateTime: true,
	tagGap:             true,
	tagBitrate:         true,
	tagPart:            true,
}

// advance applies one entry to the assembler state and returns the new
// state. A URI entry commits and returns a segment. Entries that concern
// the playlist as a whole leave the state unchanged. Neither input is
// modified.
func advance(persist persistentContext, pend pendingContext, e entry) (persistentContext, pendingContext, *MediaSegment) {
	if e.err != nil {
		if !segmentTags[e.line.Name] {
			return persist, pend, nil
		}
		pend.diagnostics = append(slices.Clip(pend.diagnostics), Diagnostic{Line: e.line.Num, Severity: SeverityError, Err: e.err})
		switch e.line.Name {
		case tagInf:
			pend.badInf = true
		case tagKey:
			persist.keys = nil
		case tagMap:
			persist.xmap = nil
		}
		if pend.line == 0 {
			pend.line = e.line.Num
		}
		return persist, pend, nil
	}

	switch t := e.tag.(type) {
	case TagURI:
		return commit(persist, pend, t.URI, e.line.Num)
	case TagKey:
		persist.keys = addKey(persist.keys, t.Key, pend.keysDeclared)
		pend.keysDeclared = true
		return persist, pend, nil
	case TagMap:
		m := t.Map
		persist.xmap = &m
		return persist, pend, nil
	case TagInf:
		pend.hasInf = true
		pend.duration = t.Duration
		pend.title = t.Title
	case TagByteRange:
		br := t.ByteRange
		pend.byteRange = &br
	case TagDiscontinuity:
		pend.discontinuity = true
	case TagProgramDateTime:
		pdt := t.Time
		pend.programDateTime = &pdt
	case TagGap:
		pend.gap = true
	case TagBitrate:
		kbps := t.Kbps
		pend.bitrate = &kbps
	case TagPart:
		pend.parts = append(slices.Clip(pend.parts), t.PartialSegment)
	case TagUnknown:
		pend.extraTags = append(slices.Clip(pend.extraTags), t.ExtTag)
	default:
		return persist, pend, nil
	}
	if pend.line == 0 {
		pend.line = e.line.Num
	}
	return persist, pend, nil
}

// commit builds the segment at uri from both contexts.
func commit(persist persistentContext, pend pendingContext, uri string, line int) (persistentContext, pendingContext, *MediaSegment) {
	if pend.discontinuity {
		persist.discontinuitySeq++
	}
	seg := &MediaSegment{
		SeqID:            persist.seqID,
		URI:              uri,
		Duration:         pend.duration,
		Title:            pend.title,
		MimeType:         mimeType(uri),
		ByteRange:        pend.byteRange,
		Discontinuity:    pend.discontinuity,
		DiscontinuitySeq: persist.discontinuitySeq,
		Keys:             slices.Clone(persist.keys),
		ProgramDateTime:  pend.programDateTime,
		Gap:              pend.gap,
		Bitrate:          pend.bitrate,
		Parts:            pend.parts,
		ExtraTags:        pend.extraTags,
		Diagnostics:      pend.diagnostics,
	}
	if persist.xmap != nil {
		seg.Map = persist.xmap.clone()
	}
	if !pend.hasInf && !pend.badInf {
		seg.Diagnostics = append(slices.Clip(seg.Diagnostics), Diagnostic{Line: line, Severity: SeverityError, Err: ErrMissingDuration})
	}
	persist.seqID++
	return persist, pendingContext{}, seg
}

// clone returns a deep copy of m.
func (m *Map) clone() *Map {
	c := *m
	if m.ByteRange != nil {
		br := *m.ByteRange
		if br.Offset != nil {
			off := *br.Offset
			br.Offset = &off
		}
		c.ByteRange = &br
	}
	return &c
}

// addKey returns the key set in effect after an EXT-X-KEY. Keys declared
// for the same segment with different KEYFORMATs accumulate. A key with the
// same KEYFORMAT replaces its predecessor and any other key replaces the
// whole set.
func addKey(keys []Key, k Key, sameSegment bool) []Key {
	if !sameSegment || k.Method == MethodNone {
		return []Key{k}
	}
	out := slices.Clone(keys)
	for i, prev := range out {
		if prev.Method == MethodNone {
			return []Key{k}
		}
		if prev.Keyformat == k.Keyformat {
			out[i] = k
			return out
		}
	}
	return append(out, k)
}

var segmentMimeTypes = map[string]string{
	".ts":     "video/mp2t",
	".m4s":    "video/iso.segment",
	".mp4":    "video/mp4",
	".m4v":    "video/mp4",
	".cmfv":   "video/mp4",
	".m4a":    "audio/mp4",
	".cmfa":   "audio/mp4",
	".aac":    "audio/aac",
	".mp3":    "audio/mpeg",
	".ac3":    "audio/ac3",
	".ec3":    "audio/eac3",
	".vtt":    "text/vtt",
	".webvtt": "text/vtt",
}

// mimeType guesses the MIME type of a segment from the extension of its
// URI path. It returns "" for unknown extensions.
func mimeType(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	return segmentMimeTypes[strings.ToLower(path.Ext(uri))]
}

// assembleMedia builds a media playlist. Malformed tags have already been
// reported when they were scanned.
func (d *decoder) assembleMedia(entries []entry) (*MediaPlaylist, error) {
	var (
		p          = new(MediaPlaylist)
		persist    persistentContext
		pend       pendingContext
		targetLine int
		afterEnd   bool
	)
	for _, e := range entries {
		if p.EndList && !afterEnd {
			afterEnd = true
			d.warn(e.line.Num, ErrContentAfterEndList)
		}
		if e.line.Name == tagTargetDuration {
			targetLine = e.line.Num
		}
		if e.err != nil {
			// A malformed tag leaves the playlist fields as they were.
			persist, pend, _ = advance(persist, pend, e)
			continue
		}

		switch t := e.tag.(type) {
		case TagVersion:
			p.Version = t.Number
		case TagTargetDuration:
			p.TargetDuration = t.Seconds
		case TagMediaSequence:
			if len(p.Segments) > 0 {
				if err := d.report(e.line.Num, SeverityError, ErrHeaderAfterSegment); err != nil {
					return nil, err
				}
				continue
			}
			p.MediaSequence = t.Number
			persist.seqID = t.Number
		case TagDiscontinuitySequence:
			if len(p.Segments) > 0 {
				if err := d.report(e.line.Num, SeverityError, ErrHeaderAfterSegment); err != nil {
					return nil, err
				}
				continue
			}
			p.DiscontinuitySequence = t.Number
			persist.discontinuitySeq = t.Number
		case TagPlaylistType:
			p.PlaylistType = t.Type
		case TagEndList:
			p.EndList = true
		case TagDefine:
			p.Defines = append(p.Defines, t.Define)
		case TagStart:
			start := t.Start
			p.Start = &start
		case TagIndependentSegments:
			p.IndependentSegments = true
		case TagIFramesOnly:
			p.IFramesOnly = true
		case TagPartInf:
			target := t.PartTarget
			p.PartTarget = &target
		case TagServerControl:
			sc := t.ServerControl
			p.ServerControl = &sc
		case TagSkip:
			skip := t.Skip
			p.Skip = &skip
		case TagDateRange:
			p.DateRanges = append(p.DateRanges, t.DateRange)
		case TagPreloadHint:
			p.PreloadHints = append(p.PreloadHints, t.PreloadHint)
		case TagRenditionReport:
			p.RenditionReports = append(p.RenditionReports, t.RenditionReport)
		case TagURI:
			if !pend.hasInf && !pend.badInf {
				if err := d.report(e.line.Num, SeverityError, ErrMissingDuration); err != nil {
					return nil, err
				}
			}
		}

		var seg *MediaSegment
		persist, pend, seg = advance(persist, pend, e)
		if seg != nil {
			p.Segments = append(p.Segments, *seg)
		}
	}

	if pend.dangling() {
		if err := d.report(pend.line, SeverityError, ErrDanglingSegmentTags); err != nil {
			return nil, err
		}
	}
	p.TrailingParts = pend.parts
	p.ExtraTags = pend.extraTags

	// A malformed EXT-X-TARGETDURATION has its own diagnostic.
	if p.TargetDuration == 0 && !d.malformedAt(targetLine) {
		if err := d.report(targetLine, SeverityError, ErrMissingTargetDuration); err != nil {
			return nil, err
		}
	}
	return p, nil
}
