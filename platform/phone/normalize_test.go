package phone

import "testing"

func TestE164(t *testing.T) {
	n := NewNormalizer("br")

	cases := []struct {
		in   string
		want string
	}{
		{"(11) 98765-4321", "+5511987654321"},
		{"+55 11 98765-4321", "+5511987654321"},
		{"+31 6 12345678", "+31612345678"},
		{"  not a phone  ", "not a phone"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := n.E164(tc.in); got != tc.want {
			t.Errorf("E164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestE164PtrBlankIsNil(t *testing.T) {
	n := NewNormalizer("")
	blank := "   "
	if got := n.E164Ptr(&blank); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}
	if n.E164Ptr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}
