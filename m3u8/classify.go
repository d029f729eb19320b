package m3u8

// Tags that only appear in media playlists.
var mediaTags = map[string]bool{
	tagTargetDuration:        true,
	tagMediaSequence:         true,
	tagPlaylistType:          true,
	tagDiscontinuitySequence: true,
	tagInf:                   true,
	tagEndList:               true,
	tagKey:                   true,
	tagMap:                   true,
	tagIFramesOnly:           true,
	tagByteRange:             true,
	tagDiscontinuity:         true,
	tagPartInf:               true,
	tagPart:                  true,
	tagSkip:                  true,
	tagPreloadHint:           true,
	tagRenditionReport:       true,
}

// Tags that only appear in multivariant playlists.
var multivariantTags = map[string]bool{
	tagStreamInf:       true,
	tagIFrameStreamInf: true,
	tagMedia:           true,
	tagSessionData:     true,
	tagSessionKey:      true,
	tagContentSteering: true,
}

// classify decides the playlist type from the tag names. Malformed tags
// count as well, their name is known even if their payload is not. A
// playlist with neither kind of tag is a degenerate media playlist.
func classify(entries []entry) (ListType, error) {
	var media, multivariant bool
	for _, e := range entries {
		name := e.line.Name
		media = media || mediaTags[name]
		multivariant = multivariant || multivariantTags[name]
	}
	switch {
	case media && multivariant:
		return 0, ErrAmbiguousPlaylistType
	case multivariant:
		return MULTIVARIANT, nil
	}
	return MEDIA, nil
}
