package m3u8

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestParseAttributeList(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    AttributeList
	}{
		{
			"quoted commas do not split",
			`X="a,b",Y=1`,
			AttributeList{
				{"X", Value{KindQuotedString, "a,b"}},
				{"Y", Value{KindDecimalInteger, "1"}},
			},
		},
		{
			"all kinds",
			`METHOD=AES-128,URI="key.bin",BANDWIDTH=1280000,TIME-OFFSET=-2.5,IV=0x1A2B,RESOLUTION=1280x720`,
			AttributeList{
				{"METHOD", Value{KindEnumerated, "AES-128"}},
				{"URI", Value{KindQuotedString, "key.bin"}},
				{"BANDWIDTH", Value{KindDecimalInteger, "1280000"}},
				{"TIME-OFFSET", Value{KindDecimalFloat, "-2.5"}},
				{"IV", Value{KindHexSequence, "0x1A2B"}},
				{"RESOLUTION", Value{KindResolution, "1280x720"}},
			},
		},
		{
			"unknown names and order are kept",
			`Z-VENDOR=yes,A=1`,
			AttributeList{
				{"Z-VENDOR", Value{KindEnumerated, "yes"}},
				{"A", Value{KindDecimalInteger, "1"}},
			},
		},
		{
			"spaces after commas",
			`A=1, B="x"`,
			AttributeList{
				{"A", Value{KindDecimalInteger, "1"}},
				{"B", Value{KindQuotedString, "x"}},
			},
		},
		{
			"empty quoted string",
			`A=""`,
			AttributeList{{"A", Value{KindQuotedString, ""}}},
		},
		{
			"escaped quote",
			`A="say \"hi\"",B=2`,
			AttributeList{
				{"A", Value{KindQuotedString, `say \"hi\"`}},
				{"B", Value{KindDecimalInteger, "2"}},
			},
		},
		{
			"empty payload",
			``,
			nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			got, err := ParseAttributeList(c.payload)
			is.NoErr(err)
			is.Equal(got, c.want)
		})
	}
}

func TestParseAttributeListErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"unbalanced quotes", `URI="key.bin`},
		{"quote inside unquoted value", `A=b"c`},
		{"missing equals", `A,B=1`},
		{"empty name", `=1`},
		{"empty value", `A=,B=1`},
		{"junk after quoted string", `A="x"y,B=1`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			_, err := ParseAttributeList(c.payload)
			var ae *MalformedAttributeListError
			is.True(errors.As(err, &ae)) // must fail with MalformedAttributeListError
			is.Equal(ae.Payload, c.payload)
		})
	}
}

func TestValueAccessors(t *testing.T) {
	is := is.New(t)

	n, err := Value{KindDecimalInteger, "42"}.Uint()
	is.NoErr(err)
	is.Equal(n, uint64(42))

	_, err = Value{KindDecimalFloat, "4.2"}.Uint()
	is.True(err != nil) // a float is not an integer

	i, err := Value{KindDecimalInteger, "9223372036854775807"}.Int()
	is.NoErr(err)
	is.Equal(i, int64(9223372036854775807))

	_, err = Value{KindDecimalInteger, "9223372036854775808"}.Int()
	is.True(err != nil) // does not fit an int64

	f, err := Value{KindDecimalInteger, "10"}.Float()
	is.NoErr(err) // an integer is a valid float
	is.Equal(f, 10.0)

	f, err = Value{KindDecimalFloat, "-0.5"}.Float()
	is.NoErr(err)
	is.Equal(f, -0.5)

	b, err := Value{KindEnumerated, "YES"}.Bool()
	is.NoErr(err)
	is.True(b)

	b, err = Value{KindEnumerated, "NO"}.Bool()
	is.NoErr(err)
	is.True(!b)

	_, err = Value{KindEnumerated, "yes"}.Bool()
	is.True(errors.Is(err, ErrNotYesOrNo)) // YES and NO are case sensitive

	_, err = Value{KindQuotedString, "YES"}.Bool()
	is.True(errors.Is(err, ErrNotYesOrNo)) // quoted YES is not an enumerated-string

	r, err := Value{KindResolution, "1920x1080"}.Resolution()
	is.NoErr(err)
	is.Equal(r, Resolution{Width: 1920, Height: 1080})
	is.Equal(r.String(), "1920x1080")
}

func TestClassifyToken(t *testing.T) {
	cases := []struct {
		token string
		want  ValueKind
	}{
		{"123", KindDecimalInteger},
		{"1.5", KindDecimalFloat},
		{"-1.5", KindDecimalFloat},
		{".5", KindDecimalFloat},
		{"0x00FF", KindHexSequence},
		{"0X00ff", KindHexSequence},
		{"0x", KindEnumerated},
		{"0xZZ", KindEnumerated},
		{"640x360", KindResolution},
		{"x360", KindEnumerated},
		{"AES-128", KindEnumerated},
		{"1.", KindEnumerated},
	}
	for _, c := range cases {
		t.Run(c.token, func(t *testing.T) {
			is := is.New(t)
			is.Equal(classifyToken(c.token), c.want)
		})
	}
}
