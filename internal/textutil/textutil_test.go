package textutil

import (
	"slices"
	"testing"
)

func TestParseKeySet(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{name: "empty", values: nil, want: []string{}},
		{name: "blank", values: []string{""}, want: []string{}},
		{name: "single", values: []string{"color_1"}, want: []string{"color_1"}},
		{name: "csv with spaces", values: []string{" right_arm , right_ee,"}, want: []string{"right_arm", "right_ee"}},
		{name: "repeated flags merge", values: []string{"color_1", "color_0,color_1"}, want: []string{"color_0", "color_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortedKeys(ParseKeySet(tt.values...))
			if got == nil {
				got = []string{}
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("ParseKeySet(%q) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestJoinKeys(t *testing.T) {
	if got := JoinKeys(nil); got != "-" {
		t.Fatalf("JoinKeys(nil) = %q", got)
	}
	if got := JoinKeys(ParseKeySet("b,a")); got != "a,b" {
		t.Fatalf("JoinKeys = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		-5:      "0 B",
		0:       "0 B",
		512:     "512 B",
		1536:    "1.5 KiB",
		1 << 20: "1.0 MiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
