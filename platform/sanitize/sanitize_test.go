package sanitize

import (
	"reflect"
	"testing"
)

func TestText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<b>Call</b> back   tomorrow", "Call back tomorrow"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;ok", "alert(1)ok"},
		{"  line one\nline two  ", "line one\nline two"},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextPtrBlank(t *testing.T) {
	blank := " <br> "
	if TextPtr(&blank) != nil {
		t.Fatal("expected nil for markup-only input")
	}
}

func TestTagsDeduplicates(t *testing.T) {
	got := Tags([]string{"VIP", " vip ", "", "follow-up", "<i>vip</i>"})
	want := []string{"vip", "follow-up"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}
}
