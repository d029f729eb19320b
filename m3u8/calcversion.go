package m3u8

import (
	"slices"
	"strings"
)

// requirement tracks the highest protocol version demanded so far and the
// feature that demanded it.
type requirement struct {
	ver    uint8
	reason string
}

func newRequirement() requirement {
	return requirement{ver: minVer, reason: "minimal version supported by this library"}
}

// need raises the requirement to ver. Ties keep the first reason.
func (r *requirement) need(ver uint8, reason string) {
	if ver > r.ver {
		r.ver, r.reason = ver, reason
	}
}

// needDefines covers the version 8 and 11 rules shared by both playlist kinds.
func (r *requirement) needDefines(defines []Define) {
	if len(defines) == 0 {
		return
	}
	r.need(8, "Variable substitution")
	for _, d := range defines {
		if d.Type == QUERYPARAM {
			r.need(11, "EXT-X-DEFINE tag with a QUERYPARAM attribute")
			return
		}
	}
}

// CalcMinVersion returns the lowest EXT-X-VERSION that allows every feature
// the playlist uses, as listed in [Protocol Version Compatibility], along with
// the feature that requires it. Versions below 3 are never reported.
//
// [Protocol Version Compatibility]: https://tools.ietf.org/html/draft-pantos-hls-rfc8216bis-16#section-8
func (p *MultivariantPlaylist) CalcMinVersion() (uint8, string) {
	r := newRequirement()
	for _, rend := range p.Renditions {
		if strings.HasPrefix(rend.InstreamID, "SERVICE") {
			r.need(7, "SERVICE value for the INSTREAM-ID attribute of the EXT-X-MEDIA")
		}
		// INSTREAM-ID outside CLOSED-CAPTIONS arrived in version 13.
		if rend.Type != RenditionCaptions && rend.InstreamID != "" {
			r.need(13, "EXT-X-MEDIA tag with INSTREAM-ID attribute for non CLOSED-CAPTIONS TYPE")
		}
	}
	r.needDefines(p.Defines)
	for _, v := range p.Variants {
		// REQ-VIDEO-LAYOUT is the only REQ- attribute defined so far.
		if v.ReqVideoLayout != "" {
			r.need(12, "REQ- attribute")
			break
		}
	}
	return r.ver, r.reason
}

// CalcMinVersion returns the lowest EXT-X-VERSION that allows every feature
// the playlist uses, as listed in [Protocol Version Compatibility], along with
// the feature that requires it. Versions below 3 are never reported.
//
// [Protocol Version Compatibility]: https://tools.ietf.org/html/draft-pantos-hls-rfc8216bis-16#section-8
func (p *MediaPlaylist) CalcMinVersion() (uint8, string) {
	r := newRequirement()
	for _, seg := range p.Segments {
		if seg.ByteRange != nil {
			r.need(4, "EXT-X-BYTERANGE tag")
			break
		}
	}
	if p.IFramesOnly {
		r.need(4, "EXT-X-I-FRAMES-ONLY tag")
	}
	for _, seg := range p.Segments {
		if slices.ContainsFunc(seg.Keys, func(k Key) bool {
			return k.Method == MethodSampleAES || k.Keyformat != "" || k.Keyformatversions != ""
		}) {
			r.need(5, "EXT-X-KEY tag with a METHOD of SAMPLE-AES, KEYFORMAT or KEYFORMATVERSIONS attributes")
		}
		if seg.Map == nil {
			continue
		}
		r.need(5, "EXT-X-MAP tag")
		if !p.IFramesOnly {
			r.need(6, "EXT-X-MAP tag in a Media Playlist that does not contain EXT-X-I-FRAMES-ONLY")
		}
	}
	r.needDefines(p.Defines)
	if p.Skip != nil {
		r.need(9, "EXT-X-SKIP tag")
		if len(p.Skip.RecentlyRemovedDateRanges) > 0 {
			r.need(10, "EXT-X-SKIP tag that replaces EXT-X-DATERANGE tags in a Playlist Delta Update")
		}
	}
	return r.ver, r.reason
}
