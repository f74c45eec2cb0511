package domain

import "testing"

func TestParseOptionsFormats(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "string array", raw: `["Paris","Rome"]`, want: []string{"Paris", "Rome"}},
		{name: "object array", raw: `[{"text":"Paris","imageUrl":"p.png"},{"text":"Rome"}]`, want: []string{"Paris", "Rome"}},
		{name: "mixed array", raw: `["Paris",{"text":"Rome"}]`, want: []string{"Paris", "Rome"}},
		{name: "comma separated", raw: `Paris, Rome ,Berlin`, want: []string{"Paris", "Rome", "Berlin"}},
		{name: "json string", raw: `"Paris,Rome"`, want: []string{"Paris", "Rome"}},
		{name: "empty", raw: ``, want: nil},
		{name: "null", raw: `null`, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseOptions([]byte(tc.raw))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d options, got %+v", len(tc.want), got)
			}
			for i := range got {
				if got[i].Text != tc.want[i] {
					t.Fatalf("option %d: expected %q, got %q", i, tc.want[i], got[i].Text)
				}
			}
		})
	}
}

func TestParseOptionsKeepsImageURL(t *testing.T) {
	got, err := ParseOptions([]byte(`[{"text":"A","imageUrl":"a.png"}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got[0].ImageURL != "a.png" {
		t.Fatalf("expected image url, got %+v", got[0])
	}
}

func TestParseOptionsRejectsBrokenJSON(t *testing.T) {
	if _, err := ParseOptions([]byte(`["Paris",`)); err == nil {
		t.Fatalf("expected error for truncated array")
	}
}
