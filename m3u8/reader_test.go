package m3u8

/*
Playlist parsing tests.
*/

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/matryer/is"
)

// testOptions supplies the variables the sample playlists declare.
var testOptions = Options{
	Imports:     map[string]string{"base": "https://cdn.example.com/vod"},
	QueryParams: map[string]string{"token": "abc123"},
}

func readTestPlaylist(t testing.TB, fileName string, opts Options) Playlist {
	t.Helper()
	f, err := os.Open(fileName)
	if err != nil {
		t.Fatalf("open %s: %v", fileName, err)
	}
	defer f.Close()

	p, err := DecodeFrom(bufio.NewReader(f), opts)
	if err != nil {
		t.Fatalf("decode %s: %v", fileName, err)
	}
	return p
}

func readTestMediaPlaylist(t testing.TB, fileName string) *MediaPlaylist {
	t.Helper()
	p, ok := readTestPlaylist(t, fileName, testOptions).(*MediaPlaylist)
	if !ok {
		t.Fatalf("%s is not a media playlist", fileName)
	}
	return p
}

func readTestMultivariantPlaylist(t testing.TB, fileName string) *MultivariantPlaylist {
	t.Helper()
	p, ok := readTestPlaylist(t, fileName, testOptions).(*MultivariantPlaylist)
	if !ok {
		t.Fatalf("%s is not a multivariant playlist", fileName)
	}
	return p
}

func TestDecodeMultivariantPlaylistWithAutodetection(t *testing.T) {
	is := is.New(t)
	f, err := os.Open("sample-playlists/master.m3u8")
	is.NoErr(err) // must open file
	p, err := DecodeFrom(bufio.NewReader(f), Options{})
	is.NoErr(err)                    // must decode playlist
	is.Equal(p.Type(), MULTIVARIANT) // must be multivariant playlist
	mp := p.(*MultivariantPlaylist)
	is.Equal(mp.Version, uint8(3))   // version must be 3
	is.Equal(len(mp.Variants), 5)    // must be 5 variants
	is.Equal(len(mp.Diagnostics), 0) // must decode without diagnostics
	is.Equal(*mp.Variants[0].ProgramID, int64(1))
}

func TestDecodeMediaPlaylistWithAutodetection(t *testing.T) {
	is := is.New(t)
	f, err := os.Open("sample-playlists/media-playlist.m3u8")
	is.NoErr(err) // must open file
	p, err := DecodeFrom(bufio.NewReader(f), Options{})
	is.NoErr(err)             // must decode playlist
	is.Equal(p.Type(), MEDIA) // must be media playlist
	pp := p.(*MediaPlaylist)
	is.Equal(len(pp.Segments), 3) // must be 3 segments
}

func TestDecodeTypedHelpers(t *testing.T) {
	is := is.New(t)
	media, err := os.ReadFile("sample-playlists/media-playlist.m3u8")
	is.NoErr(err) // must read file
	master, err := os.ReadFile("sample-playlists/master.m3u8")
	is.NoErr(err) // must read file

	_, err = DecodeMedia(media, Options{})
	is.NoErr(err) // media playlist must decode as media

	_, err = DecodeMultivariant(master, Options{})
	is.NoErr(err) // multivariant playlist must decode as multivariant

	_, err = DecodeMedia(master, Options{})
	is.True(errors.Is(err, ErrUnexpectedPlaylistType)) // multivariant is not media

	_, err = DecodeMultivariant(media, Options{})
	is.True(errors.Is(err, ErrUnexpectedPlaylistType)) // media is not multivariant
}

func TestDecodeInvalidEncoding(t *testing.T) {
	is := is.New(t)
	data := []byte("#EXTM3U\n#EXTINF:10,\xff\xfe\nseg.ts\n")
	p, err := Decode(data, Options{})
	is.True(errors.Is(err, ErrInvalidEncoding))         // invalid UTF-8 is fatal
	is.True(p == nil)                                   // no partial playlist
	is.True(strings.Contains(err.Error(), "offset 19")) // offset of the first invalid byte
}

func TestDecodeWithoutExtM3U(t *testing.T) {
	cases := []struct {
		name string
		mode Mode
	}{
		{"lenient", Lenient},
		{"strict", Strict},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			p, err := DecodeMedia([]byte("#EXT-X-TARGETDURATION:10\n#EXTINF:10,\nseg.ts\n"), Options{Mode: c.mode})
			is.NoErr(err)                   // a missing #EXTM3U is not fatal
			is.Equal(len(p.Segments), 1)    // playlist is still assembled
			is.Equal(len(p.Diagnostics), 1) // must report the missing marker
			is.Equal(p.Diagnostics[0].Severity, SeverityWarning)
			is.True(errors.Is(p.Diagnostics[0], ErrExtM3UAbsent))
		})
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	is := is.New(t)
	p, err := Decode(nil, Options{})
	is.NoErr(err)             // empty input decodes in lenient mode
	is.Equal(p.Type(), MEDIA) // degenerate media playlist
	pp := p.(*MediaPlaylist)
	is.Equal(len(pp.Segments), 0)
	is.True(errors.Is(JoinDiagnostics(pp.Diagnostics), ErrExtM3UAbsent))
	is.True(errors.Is(JoinDiagnostics(pp.Diagnostics), ErrMissingTargetDuration))
}

func TestDecodeLineEndings(t *testing.T) {
	is := is.New(t)
	lf := "#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXTINF:9.5,first\nseg0.ts\n#EXTINF:9.5,\nseg1.ts\n#EXT-X-ENDLIST\n"
	crlf := "\ufeff" + strings.ReplaceAll(lf, "\n", "\r\n")

	a, err := DecodeMedia([]byte(lf), Options{Mode: Strict})
	is.NoErr(err) // LF playlist must decode
	b, err := DecodeMedia([]byte(crlf), Options{Mode: Strict})
	is.NoErr(err) // CRLF playlist with byte order mark must decode

	is.Equal(a.Segments, b.Segments) // line endings must not change the result
	is.Equal(b.Segments[0].Title, "first")
}

func TestDecodeIsIdempotent(t *testing.T) {
	is := is.New(t)
	for _, name := range []string{
		"sample-playlists/media-playlist-with-keys.m3u8",
		"sample-playlists/master-groups-and-iframe.m3u8",
		"sample-playlists/media-playlist-malformed.m3u8",
	} {
		data, err := os.ReadFile(name)
		is.NoErr(err) // must read file
		p1, err := Decode(data, testOptions)
		is.NoErr(err) // first decode
		p2, err := Decode(data, testOptions)
		is.NoErr(err)    // second decode
		is.Equal(p1, p2) // decoding twice must give equal results
	}
}

func TestStrictModeReturnsFirstError(t *testing.T) {
	is := is.New(t)
	data, err := os.ReadFile("sample-playlists/media-playlist-malformed.m3u8")
	is.NoErr(err) // must read file

	_, err = Decode(data, Options{Mode: Strict})
	is.True(err != nil) // strict mode must fail

	var diag Diagnostic
	is.True(errors.As(err, &diag)) // error must carry its location
	is.Equal(diag.Line, 7)         // first malformed tag is on line 7

	var mt *MalformedTagError
	is.True(errors.As(err, &mt)) // error must be a malformed tag
	is.Equal(mt.Tag, "EXT-X-BYTERANGE")
	is.Equal(mt.Payload, "abc@0")
}

func TestLenientModeKeepsDiagnostics(t *testing.T) {
	is := is.New(t)
	p := readTestMediaPlaylist(t, "sample-playlists/media-playlist-malformed.m3u8")

	is.Equal(len(p.Segments), 4) // every URI must give a segment
	lines := make([]int, 0, len(p.Diagnostics))
	for _, d := range p.Diagnostics {
		lines = append(lines, d.Line)
		is.Equal(d.Severity, SeverityError)
	}
	is.Equal(lines, []int{7, 9, 11}) // diagnostics in line order
	is.True(HasErrors(p.Diagnostics))

	is.True(p.Segments[1].ByteRange == nil)     // malformed byte range is left unset
	is.Equal(len(p.Segments[1].Diagnostics), 1) // and attached to its segment
	is.Equal(p.Segments[2].Duration, 0.0)       // malformed duration is left unset
	is.Equal(len(p.Segments[2].Diagnostics), 1) // without a second missing-duration diagnostic
	is.Equal(len(p.Segments[3].Keys), 0)        // malformed key clears the key in effect
	is.Equal(p.Segments[3].Diagnostics[0].Line, 11)
}

func TestStructuralErrorsAreFatalInLenientMode(t *testing.T) {
	cases := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{
			"ambiguous",
			"#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXT-X-STREAM-INF:BANDWIDTH=1\nv.m3u8\n",
			func(err error) bool { return errors.Is(err, ErrAmbiguousPlaylistType) },
		},
		{
			"unresolved variable",
			"#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXTINF:1,\n{$missing}/seg.ts\n",
			func(err error) bool {
				var uv *UnresolvedVariableError
				return errors.As(err, &uv) && uv.Name == "missing"
			},
		},
		{
			"missing import",
			"#EXTM3U\n#EXT-X-DEFINE:IMPORT=\"base\"\n#EXT-X-TARGETDURATION:10\n",
			func(err error) bool {
				var uv *UnresolvedVariableError
				return errors.As(err, &uv) && uv.Name == "base"
			},
		},
		{
			"unassociated variant",
			"#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1280000\n",
			func(err error) bool { return errors.Is(err, ErrUnassociatedVariantAttributes) },
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			p, err := Decode([]byte(c.input), Options{Mode: Lenient})
			is.True(p == nil)     // no partial playlist
			is.True(c.check(err)) // unexpected error
		})
	}
}

func TestDecodeWarnsAboutVersions(t *testing.T) {
	cases := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{
			"unsupported version",
			"#EXTM3U\n#EXT-X-VERSION:14\n#EXT-X-TARGETDURATION:10\n#EXTINF:1,\nseg.ts\n",
			func(err error) bool {
				var uf *UnsupportedFeatureError
				return errors.As(err, &uf)
			},
		},
		{
			"version too low",
			"#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXT-X-MAP:URI=\"init.mp4\"\n#EXTINF:1,\nseg.m4s\n",
			func(err error) bool { return errors.Is(err, ErrVersionTooLow) },
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			p, err := DecodeMedia([]byte(c.input), Options{Mode: Strict})
			is.NoErr(err)                   // version problems are warnings
			is.Equal(len(p.Diagnostics), 1) // must report one warning
			is.Equal(p.Diagnostics[0].Line, 2)
			is.Equal(p.Diagnostics[0].Severity, SeverityWarning)
			is.True(c.check(p.Diagnostics[0]))
		})
	}
}

func TestDecodeLogsDiagnostics(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "m3u8",
		Output: &buf,
		Level:  hclog.Debug,
	})
	data, err := os.ReadFile("sample-playlists/media-playlist-malformed.m3u8")
	is.NoErr(err) // must read file

	_, err = Decode(data, Options{Logger: logger})
	is.NoErr(err) // lenient mode must decode
	out := buf.String()
	is.Equal(strings.Count(out, "playlist diagnostic"), 3) // one record per diagnostic
	is.True(strings.Contains(out, "line=7"))
	is.True(strings.Contains(out, "EXT-X-BYTERANGE"))
}

func TestDecodeWithTimeParse(t *testing.T) {
	is := is.New(t)
	input := "#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXT-X-PROGRAM-DATE-TIME:2024-05-01T10:00:00+0100\n#EXTINF:10,\nseg.ts\n"

	p, err := DecodeMedia([]byte(input), Options{Mode: Strict})
	is.NoErr(err) // FullTimeParse accepts a zone without colon
	want := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	is.True(p.Segments[0].ProgramDateTime.Equal(want))

	_, err = DecodeMedia([]byte(input), Options{Mode: Strict, TimeParse: StrictTimeParse})
	var mt *MalformedTagError
	is.True(errors.As(err, &mt)) // StrictTimeParse rejects it
	is.Equal(mt.Tag, "EXT-X-PROGRAM-DATE-TIME")
}

func TestDecodeFromReaderError(t *testing.T) {
	is := is.New(t)
	boom := errors.New("boom")
	_, err := DecodeFrom(errReader{boom}, Options{})
	is.True(errors.Is(err, boom)) // reader errors are returned as is
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// Test for FullTimeParse of EXT-X-PROGRAM-DATE-TIME
// We testing ISO/IEC 8601:2004 where we can get time in UTC, UTC with Nanoseconds
// timeZone in formats '±00:00', '±0000', '±00'
// m3u8.FullTimeParse()
func TestFullTimeParse(t *testing.T) {
	var timestamps = []struct {
		name  string
		value string
	}{
		{"time_in_utc", "2006-01-02T15:04:05Z"},
		{"time_in_utc_nano", "2006-01-02T15:04:05.123456789Z"},
		{"time_with_positive_zone_and_colon", "2006-01-02T15:04:05+01:00"},
		{"time_with_positive_zone_no_colon", "2006-01-02T15:04:05+0100"},
		{"time_with_positive_zone_2digits", "2006-01-02T15:04:05+01"},
		{"time_with_negative_zone_and_colon", "2006-01-02T15:04:05-01:00"},
		{"time_with_negative_zone_no_colon", "2006-01-02T15:04:05-0100"},
		{"time_with_negative_zone_2digits", "2006-01-02T15:04:05-01"},
	}

	var err error
	for _, tstamp := range timestamps {
		_, err = FullTimeParse(tstamp.value)
		if err != nil {
			t.Errorf("FullTimeParse Error at %s [%s]: %s", tstamp.name, tstamp.value, err)
		}
	}
}

// Test for StrictTimeParse of EXT-X-PROGRAM-DATE-TIME
// We testing Strict format of RFC3339 where we can get time in UTC, UTC with Nanoseconds
// timeZone in formats '±00:00'
// m3u8.StrictTimeParse()
func TestStrictTimeParse(t *testing.T) {
	var timestamps = []struct {
		name  string
		value string
	}{
		{"time_in_utc", "2006-01-02T15:04:05Z"},
		{"time_in_utc_nano", "2006-01-02T15:04:05.123456789Z"},
		{"time_with_positive_zone_and_colon", "2006-01-02T15:04:05+01:00"},
		{"time_with_negative_zone_and_colon", "2006-01-02T15:04:05-01:00"},
	}

	var err error
	for _, tstamp := range timestamps {
		_, err = StrictTimeParse(tstamp.value)
		if err != nil {
			t.Errorf("StrictTimeParse Error at %s [%s]: %s", tstamp.name, tstamp.value, err)
		}
	}
}

/***************************
 *  Code parsing examples  *
 ***************************/

func ExampleDecode_withDiscontinuity() {
	data, _ := os.ReadFile("sample-playlists/media-playlist-with-discontinuity.m3u8")
	p, _ := DecodeMedia(data, Options{})
	for _, seg := range p.Segments {
		fmt.Printf("%d %d %s %.3f\n", seg.SeqID, seg.DiscontinuitySeq, seg.URI, seg.Duration)
	}
	// Output:
	// 0 2 ad0.ts 10.000
	// 1 2 ad1.ts 8.000
	// 2 3 movieA.ts 10.000
	// 3 3 movieB.ts 10.000
}

/****************
 *  Benchmarks  *
 ****************/

func BenchmarkDecodeMultivariantPlaylist(b *testing.B) {
	data, err := os.ReadFile("sample-playlists/master-groups-and-iframe.m3u8")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeMediaPlaylist(b *testing.B) {
	data, err := os.ReadFile("sample-playlists/media-playlist-large.m3u8")
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data, Options{Mode: Strict}); err != nil {
			b.Fatal(err)
		}
	}
}
