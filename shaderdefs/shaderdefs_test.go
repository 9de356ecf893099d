package shaderdefs

import "testing"

func TestBits(t *testing.T) {
	tbl := Default()

	cases := []struct {
		name    string
		flags   []string
		want    int32
		wantErr bool
	}{
		{name: "single flag", flags: []string{"solid"}, want: 1},
		{name: "multiple flags", flags: []string{"solid", "water"}, want: 1 | (1 << 5)},
		{name: "empty", flags: nil, want: 0},
		{name: "unknown flag", flags: []string{"nope"}, wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := tbl.ContentBits(c.flags)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("ContentBits(%v) = %#x, want %#x", c.flags, got, c.want)
			}
		})
	}
}

func TestDescribeRoundTrip(t *testing.T) {
	tbl := Default()

	mask, err := tbl.ContentBits([]string{"solid", "detail"})
	if err != nil {
		t.Fatalf("ContentBits: %v", err)
	}

	got := Describe(tbl.Content, mask)
	want := "solid|detail"
	if got != want {
		t.Fatalf("Describe(%#x) = %q, want %q", mask, got, want)
	}
}

func TestDescribeUnknownBits(t *testing.T) {
	got := Describe(Default().Content, -1<<31)
	if got != "0x80000000" {
		t.Fatalf("Describe unknown bit = %q", got)
	}
}

func TestDescribeZero(t *testing.T) {
	if got := Describe(Default().Content, 0); got != "none" {
		t.Fatalf("Describe(0) = %q, want %q", got, "none")
	}
}
