package m3u8

/*
 This file defines data structures related to package.
*/

import (
	"strconv"
	"time"
)

const (
	// minVer is the lowest protocol version reported by CalcMinVersion.
	// Version 3 means that floating point EXTINF durations are used.
	// [Protocol Version Compatibility]
	minVer = uint8(3)

	// maxVer is the highest protocol version this package knows about.
	maxVer = uint8(13)

	// DATETIME represents format for EXT-X-PROGRAM-DATE-TIME timestamps.
	// Format is [ISO/IEC 8601:2004] according to the [HLS spec].
	DATETIME = time.RFC3339Nano
)

// ListType is type of playlist.
type ListType uint

const (
	// use 0 for undefined type
	MULTIVARIANT ListType = iota + 1
	MEDIA
)

func (t ListType) String() string {
	switch t {
	case MULTIVARIANT:
		return "multivariant"
	case MEDIA:
		return "media"
	}
	return "undefined"
}

// MediaType is EXT-X-PLAYLIST-TYPE tag
type MediaType uint

const (
	// use 0 for undefined
	EVENT MediaType = iota + 1
	VOD
)

func (t MediaType) String() string {
	switch t {
	case EVENT:
		return "EVENT"
	case VOD:
		return "VOD"
	}
	return ""
}

// Key methods from the EXT-X-KEY METHOD attribute.
const (
	MethodNone      = "NONE"
	MethodAES128    = "AES-128"
	MethodSampleAES = "SAMPLE-AES"
)

// Rendition types from the EXT-X-MEDIA TYPE attribute.
const (
	RenditionAudio     = "AUDIO"
	RenditionVideo     = "VIDEO"
	RenditionSubtitles = "SUBTITLES"
	RenditionCaptions  = "CLOSED-CAPTIONS"
)

// Playlist is implemented by *MediaPlaylist and *MultivariantPlaylist only.
type Playlist interface {
	Type() ListType
	isPlaylist()
}

// MediaPlaylist represents a single bitrate playlist aka media playlist.
// It is used for VOD, EVENT and sliding window live playlists.
// URI lines in the Playlist point to media segments.
type MediaPlaylist struct {
	Version               uint8             // EXT-X-VERSION, 0 if absent
	IndependentSegments   bool              // EXT-X-INDEPENDENT-SEGMENTS
	Start                 *Start            // EXT-X-START
	Defines               []Define          // EXT-X-DEFINE tags
	TargetDuration        uint64            // EXT-X-TARGETDURATION in seconds
	MediaSequence         uint64            // EXT-X-MEDIA-SEQUENCE
	DiscontinuitySequence uint64            // EXT-X-DISCONTINUITY-SEQUENCE
	EndList               bool              // EXT-X-ENDLIST
	PlaylistType          MediaType         // EXT-X-PLAYLIST-TYPE (EVENT, VOD or 0)
	IFramesOnly           bool              // EXT-X-I-FRAMES-ONLY
	PartTarget            *float64          // EXT-X-PART-INF:PART-TARGET
	ServerControl         *ServerControl    // EXT-X-SERVER-CONTROL
	Segments              []MediaSegment    // Segments in playback order.
	Skip                  *Skip             // EXT-X-SKIP of a playlist delta update
	DateRanges            []DateRange       // EXT-X-DATERANGE tags
	PreloadHints          []PreloadHint     // EXT-X-PRELOAD-HINT tags
	RenditionReports      []RenditionReport // EXT-X-RENDITION-REPORT tags
	TrailingParts         []PartialSegment  // EXT-X-PART tags after the last segment
	ExtraTags             []ExtTag          // Unknown tags outside of any segment
	Diagnostics           []Diagnostic      // Problems found in Lenient mode
}

func (*MediaPlaylist) Type() ListType { return MEDIA }
func (*MediaPlaylist) isPlaylist()    {}

// MultivariantPlaylist represents a multivariant (master) playlist which
// lists one or more media playlists. URI lines in the playlist identify
// media playlists.
type MultivariantPlaylist struct {
	Version             uint8            // EXT-X-VERSION, 0 if absent
	IndependentSegments bool             // EXT-X-INDEPENDENT-SEGMENTS
	Start               *Start           // EXT-X-START
	Defines             []Define         // EXT-X-DEFINE tags
	Variants            []Variant        // EXT-X-STREAM-INF and EXT-X-I-FRAME-STREAM-INF
	Renditions          []Rendition      // EXT-X-MEDIA tags in playlist order
	RenditionGroups     []RenditionGroup // EXT-X-MEDIA tags grouped by TYPE and GROUP-ID
	SessionData         []SessionData    // EXT-X-SESSION-DATA tags
	SessionKeys         []Key            // EXT-X-SESSION-KEY tags
	ContentSteering     *ContentSteering // EXT-X-CONTENT-STEERING tag
	ExtraTags           []ExtTag         // Unknown tags outside of any variant
	Diagnostics         []Diagnostic     // Problems found in Lenient mode
}

func (*MultivariantPlaylist) Type() ListType { return MULTIVARIANT }
func (*MultivariantPlaylist) isPlaylist()    {}

// Group returns the rendition group with the given type and id.
func (p *MultivariantPlaylist) Group(typ, groupID string) (RenditionGroup, bool) {
	for _, g := range p.RenditionGroups {
		if g.Type == typ && g.GroupID == groupID {
			return g, true
		}
	}
	return RenditionGroup{}, false
}

// Variant structure represents media playlist variants in multivariant playlists.
type Variant struct {
	URI string // URI is the path to the media playlist. Parameter for I-frame playlist.
	VariantParams
	ExtraTags []ExtTag // Unknown tags between EXT-X-STREAM-INF and its URI
}

// VariantParams represents parameters for a Variant.
// Used in EXT-X-STREAM-INF and EXT-X-I-FRAME-STREAM-INF.
// URI parameter for EXT-X-I-FRAME-STREAM-INF is in Variant.
type VariantParams struct {
	Bandwidth          uint64      // BANDWIDTH parameter
	AverageBandwidth   uint64      // AVERAGE-BANDWIDTH parameter
	Score              float64     // SCORE parameter
	Codecs             string      // CODECS parameter
	SupplementalCodecs string      // SUPPLEMENTAL-CODECS parameter
	Resolution         *Resolution // RESOLUTION parameter (WxH)
	FrameRate          float64     // FRAME-RATE parameter
	HDCPLevel          string      // HDCP-LEVEL parameter: NONE, TYPE-0, TYPE-1
	AllowedCPC         string      // ALLOWED-CPC parameter
	VideoRange         string      // VIDEO-RANGE parameter: SDR, HLG, PQ
	ReqVideoLayout     string      // REQ-VIDEO-LAYOUT parameter
	StableVariantID    string      // STABLE-VARIANT-ID parameter
	Audio              string      // AUDIO alternative renditions group ID. EXT-X-STREAM-INF only
	Video              string      // VIDEO alternative renditions group ID
	Subtitles          string      // SUBTITLES alternative renditions group ID. EXT-X-STREAM-INF only
	Captions           string      // CLOSED-CAPTIONS parameter, NONE or group ID
	PathwayID          string      // PATHWAY-ID parameter for Content Steering
	Name               string      // NAME parameter. Non-standard Wowza/JWPlayer extension
	ProgramID          *int64      // PROGRAM-ID parameter. Removed in version 6
	Iframe             bool        // EXT-X-I-FRAME-STREAM-INF flag
	Alternatives       []Rendition // EXT-X-MEDIA renditions of the referenced groups
}

// Resolution is a decimal-resolution attribute value.
type Resolution struct {
	Width  uint64
	Height uint64
}

func (r Resolution) String() string {
	return strconv.FormatUint(r.Width, 10) + "x" + strconv.FormatUint(r.Height, 10)
}

// Rendition represents an EXT-X-MEDIA tag.
// Attributes are listed in same order as in specification for easy comparison.
type Rendition struct {
	Type              string // TYPE parameter
	URI               string // URI parameter
	GroupID           string // GROUP-ID parameter
	Language          string // LANGUAGE parameter
	AssocLanguage     string // ASSOC-LANGUAGE parameter
	Name              string // NAME parameter
	StableRenditionID string // STABLE-RENDITION-ID parameter
	Default           bool   // DEFAULT parameter
	Autoselect        bool   // AUTOSELECT parameter
	Forced            bool   // FORCED parameter
	InstreamID        string // INSTREAM-ID parameter
	BitDepth          uint64 // BIT-DEPTH parameter
	SampleRate        uint64 // SAMPLE-RATE parameter
	Characteristics   string // CHARACTERISTICS parameter
	Channels          string // CHANNELS parameter
}

// RenditionGroup holds the renditions sharing a TYPE and GROUP-ID.
type RenditionGroup struct {
	Type       string
	GroupID    string
	Renditions []Rendition
}

// MediaSegment represents a media segment included in a media playlist.
type MediaSegment struct {
	SeqID            uint64           // Media sequence number of the segment.
	URI              string           // URI is the path to the media segment.
	Duration         float64          // EXTINF first parameter. Duration in seconds.
	Title            string           // EXTINF optional second parameter.
	MimeType         string           // Guessed from the URI extension, empty if unknown.
	ByteRange        *ByteRange       // EXT-X-BYTERANGE
	Discontinuity    bool             // EXT-X-DISCONTINUITY before this segment.
	DiscontinuitySeq uint64           // Discontinuity sequence number of the segment.
	Keys             []Key            // EXT-X-KEY tags in effect for this segment.
	Map              *Map             // EXT-X-MAP in effect for this segment.
	ProgramDateTime  *time.Time       // EXT-X-PROGRAM-DATE-TIME
	Gap              bool             // EXT-X-GAP
	Bitrate          *uint64          // EXT-X-BITRATE in kbit/s
	Parts            []PartialSegment // EXT-X-PART tags of this segment.
	ExtraTags        []ExtTag         // Unknown tags preceding the URI.
	Diagnostics      []Diagnostic     // Problems with the tags of this segment.
}

// Key returns the first key in effect for the segment.
func (s *MediaSegment) Key() (Key, bool) {
	if len(s.Keys) == 0 {
		return Key{}, false
	}
	return s.Keys[0], true
}

// Key structure represents information about stream encryption
// (EXT-X-KEY and EXT-X-SESSION-KEY tags).
type Key struct {
	Method            string // METHOD parameter
	URI               string // URI parameter
	IV                string // IV parameter, hexadecimal including 0x
	Keyformat         string // KEYFORMAT parameter
	Keyformatversions string // KEYFORMATVERSIONS parameter
}

// Map (EXT-X-MAP tag) specifies how obtain the Media
// Initialization Section required to parse the applicable
// Media Segments.
//
// It applies to every Media Segment that appears after it in the
// Playlist until the next EXT-X-MAP tag or until the end of the
// playlist.
type Map struct {
	URI       string     // URI is the path to the Media Initialization Section.
	ByteRange *ByteRange // BYTERANGE parameter
}

// ByteRange is a sub-range of the resource at a URI.
type ByteRange struct {
	Length uint64  // <n> is length in bytes
	Offset *uint64 // [@o] is offset from the start; nil continues the previous range
}

func (r ByteRange) String() string {
	s := strconv.FormatUint(r.Length, 10)
	if r.Offset != nil {
		s += "@" + strconv.FormatUint(*r.Offset, 10)
	}
	return s
}

// PartialSegment represents an EXT-X-PART tag of low-latency HLS.
type PartialSegment struct {
	URI         string
	Duration    float64
	Independent bool
	ByteRange   *ByteRange
	Gap         bool
}

// Start represents an EXT-X-START tag.
type Start struct {
	TimeOffset float64 // TIME-OFFSET, negative values count from the end
	Precise    bool    // PRECISE=YES
}

// ServerControl represents an EXT-X-SERVER-CONTROL tag.
type ServerControl struct {
	CanSkipUntil      *float64 // CAN-SKIP-UNTIL in seconds
	CanSkipDateRanges bool     // CAN-SKIP-DATERANGES
	HoldBack          *float64 // HOLD-BACK in seconds
	PartHoldBack      *float64 // PART-HOLD-BACK in seconds
	CanBlockReload    bool     // CAN-BLOCK-RELOAD
}

// Skip represents an EXT-X-SKIP tag.
type Skip struct {
	SkippedSegments           uint64   // SKIPPED-SEGMENTS
	RecentlyRemovedDateRanges []string // RECENTLY-REMOVED-DATERANGES, tab separated IDs
}

// PreloadHint represents an EXT-X-PRELOAD-HINT tag.
type PreloadHint struct {
	Type            string  // TYPE: PART or MAP
	URI             string  // URI
	ByteRangeStart  uint64  // BYTERANGE-START
	ByteRangeLength *uint64 // BYTERANGE-LENGTH, nil means to the end of the resource
}

// RenditionReport represents an EXT-X-RENDITION-REPORT tag.
type RenditionReport struct {
	URI      string  // URI
	LastMSN  *uint64 // LAST-MSN
	LastPart *uint64 // LAST-PART
}

// DateRange corresponds to EXT-X-DATERANGE tag.
// It is used for signaling SCTE-35 messages, interstitials, and other metadata events.
type DateRange struct {
	ID              string      // ID is mandatory quoted string ID
	Class           string      // CLASS is a client-defined quoted string
	StartDate       time.Time   // START-DATE is the start time
	Cue             string      // CUE is an enumerated-string-list of PRE, POST, or ONCE
	EndDate         *time.Time  // END-DATE is optional end time
	Duration        *float64    // DURATION is optional duration in seconds
	PlannedDuration *float64    // PLANNED-DURATION is optional planned duration in seconds
	XAttrs          []Attribute // XAttrs is a list of X-<client-attribute>
	SCTE35Cmd       string      // SCTE35-CMD is a optional hex value for SCTE35 command
	SCTE35Out       string      // SCTE35-OUT is a optional hex value for SCTE35 CUE-OUT command
	SCTE35In        string      // SCTE35-IN is a optional hex value for SCTE35 CUE-IN command
	EndOnNext       bool        // END-ON-NEXT is enumerated YES/NO
}

type DefineType uint

const (
	VALUE DefineType = iota
	IMPORT
	QUERYPARAM
)

func (t DefineType) String() string {
	switch t {
	case VALUE:
		return "VALUE"
	case IMPORT:
		return "IMPORT"
	case QUERYPARAM:
		return "QUERYPARAM"
	}
	return "UNKNOWN"
}

// Define represents an EXT-X-DEFINE tag and provides a Playlist variable definition or declaration.
type Define struct {
	Name  string     // Specifies the Variable Name.
	Type  DefineType // name-VALUE pair, QUERYPARAM or IMPORT.
	Value string     // Resolved value of the variable.
}

// SessionData represents an EXT-X-SESSION-DATA tag.
type SessionData struct {
	DataID   string // DATA-ID is a mandatory quoted-string
	Value    string // VALUE is a quoted-string
	URI      string // URI is a quoted-string
	Format   string // FORMAT is enumerated string. Values are JSON and RAW (default is JSON)
	Language string // LANGUAGE is a quoted-string containing an [RFC5646] language tag
}

// ContentSteering represents an EXT-X-CONTENT-STEERING tag.
type ContentSteering struct {
	ServerURI string // SERVER-URI is a quoted-string containing a URI to a Steering Manifest
	PathwayID string // PATHWAY-ID is a quoted-string containing a unique identifier for the pathway
}

// ExtTag is a tag this package does not know, kept verbatim.
type ExtTag struct {
	Name    string // Tag name without the leading '#'
	Payload string // Everything after the first ':', empty for bare tags
}

func (t ExtTag) String() string {
	if t.Payload == "" {
		return "#" + t.Name
	}
	return "#" + t.Name + ":" + t.Payload
}

/*
[hls-spec]: https://datatracker.ietf.org/doc/html/draft-pantos-hls-rfc8216bis-16
[ISO/IEC 8601:2004]:http://www.iso.org/iso/catalogue_detail?csnumber=40874
[Protocol Version Compatibility]: https://datatracker.ietf.org/doc/html/draft-pantos-hls-rfc8216bis-16#section-8
[RFC5646]: https://datatracker.ietf.org/doc/html/rfc5646
*/
