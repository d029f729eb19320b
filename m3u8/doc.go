/*
Package m3u8 decodes HLS playlists into typed values.

HLS (HTTP Live Streaming) is described in [IETF RFC8216][rfc8216] and has
continued to evolve in a series of Internet Drafts [rfc8216bis]. This
package follows [rfc8216bis-16] and decodes every tag of that draft that a
player, a CDN tool or an analytics pipeline needs to inspect.

## Structure and design of the code

There are two kinds of m3u8 playlists: MultivariantPlaylist (formerly
known as master playlist) and MediaPlaylist. Both implement the sealed
Playlist interface.

Decoding runs in stages over the input:

  - every physical line is classified as a tag, a URI or something to
    ignore (ClassifyLine),
  - tag payloads are decoded into the closed Tag set, with attribute lists
    parsed by ParseAttributeList and {$name} variables substituted as
    soon as EXT-X-DEFINE has declared them,
  - the tag names decide between a Media and a Multivariant playlist,
  - an assembler walks the tags once and builds the playlist.

Media segment state is split in two: tags such as EXT-X-KEY and EXT-X-MAP
stay in effect until they are redefined, while EXTINF, EXT-X-BYTERANGE and
friends only apply to the next URI line.

Errors in single tags are reported as Diagnostics on the decoded playlist
(Lenient mode) or stop the decoding (Strict mode). Errors that make the
whole input meaningless, such as invalid UTF-8 or a playlist mixing media
and multivariant tags, are always returned.

Decoding has no side effects and keeps no state between calls, so it is
safe to decode many playlists concurrently.

Decode a playlist and inspect its type:

	p, err := m3u8.Decode(data, m3u8.Options{})
	if err != nil {
		return err
	}
	switch pl := p.(type) {
	case *m3u8.MediaPlaylist:
		fmt.Println(len(pl.Segments), "segments")
	case *m3u8.MultivariantPlaylist:
		fmt.Println(len(pl.Variants), "variants")
	}

[rfc8216]: https://tools.ietf.org/html/rfc8216
[rfc8216bis]: https://tools.ietf.org/html/draft-pantos-rfc8216bis
[rfc8216bis-16]: https://tools.ietf.org/html/draft-pantos-rfc8216bis-16
*/
package m3u8
