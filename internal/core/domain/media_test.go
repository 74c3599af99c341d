package domain

import "testing"

func TestMediaPublicID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{url: "", want: ""},
		{url: "http://cdn.local/media/3f2a9c.png", want: "3f2a9c"},
		{url: "https://cdn.local/media/3f2a9c.tar.gz", want: "3f2a9c"},
		{url: "https://cdn.local/media/3f2a9c", want: "3f2a9c"},
		{url: "https://cdn.local/media/3f2a9c.jpg?x=1&y=.2", want: "3f2a9c"},
		{url: "plain.webp", want: "plain"},
	}
	for _, tc := range cases {
		if got := MediaPublicID(tc.url); got != tc.want {
			t.Errorf("MediaPublicID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
