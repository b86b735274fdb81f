package osc

type testCase struct {
	name    string
	obj     Packet
	raw     []byte
	wantErr bool
}

var messageTestCases = []testCase{
	{"no_arguments", NewMessage("/a"), []byte("/a\x00\x00,\x00\x00\x00"), false},
	{"int32", NewMessage("/test", int32(1)), []byte("/test\x00\x00\x00,i\x00\x00\x00\x00\x00\x01"), false},
	{"midi", NewMessage("/midi", MIDI{0x00, 0x90, 0x3c, 0x64}), []byte("/midi\x00\x00\x00,m\x00\x00\x00\x90\x3c\x64"), false},
	{"string_float", NewMessage("/s", "hi", float32(0.5)), []byte("/s\x00\x00,sf\x00hi\x00\x00\x3f\x00\x00\x00"), false},
	{"blob", NewMessage("/b", []byte{1, 2, 3}), []byte("/b\x00\x00,b\x00\x00\x00\x00\x00\x03\x01\x02\x03\x00"), false},
	{"bools_nil", NewMessage("/t", true, false, nil), []byte("/t\x00\x00,TFN\x00\x00\x00\x00"), false},
	{"int64_double", NewMessage("/h", int64(-1), float64(1)), []byte("/h\x00\x00,hd\x00\xff\xff\xff\xff\xff\xff\xff\xff\x3f\xf0\x00\x00\x00\x00\x00\x00"), false},
}

var bundleTestCases = []testCase{
	{
		"immediate_midi",
		NewBundle(NewMessage("/midi", MIDI{0x00, 0x90, 0x3c, 0x64})),
		[]byte("#bundle\x00\x00\x00\x00\x00\x00\x00\x00\x01\x00\x00\x00\x10/midi\x00\x00\x00,m\x00\x00\x00\x90\x3c\x64"),
		false,
	},
	{"empty", NewBundle(), []byte("#bundle\x00\x00\x00\x00\x00\x00\x00\x00\x01"), false},
}

var invalidPackets = []struct {
	name string
	raw  []byte
}{
	{"empty", []byte{}},
	{"garbage", []byte("abcd")},
	{"unpadded", []byte("/midi\x00,m\x00")},
	{"no_null", []byte("/mid")},
	{"short_midi", []byte("/midi\x00\x00\x00,m\x00\x00")},
	{"unknown_tag", []byte("/midi\x00\x00\x00,q\x00\x00\x00\x00\x00\x00")},
	{"bad_tag_string", []byte("/midi\x00\x00\x00m\x00\x00\x00")},
	{"blob_too_long", []byte("/b\x00\x00,b\x00\x00\x00\x00\x00\x09\x01\x02\x03\x00")},
	{"bundle_bad_length", []byte("#bundle\x00\x00\x00\x00\x00\x00\x00\x00\x01\x00\x00\x00\x40/a\x00\x00")},
}
