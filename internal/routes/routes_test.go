package routes

import "testing"

func TestRelativeTable(t *testing.T) {
	table, err := NewTable("")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	cases := []struct {
		name  string
		build func() (string, error)
		want  string
	}{
		{"home", table.Home, "/"},
		{"archive", table.Archive, "/archive"},
		{"feed", table.Feed, "/feed.xml"},
		{"atom", table.Atom, "/feed.atom.xml"},
		{"sitemap", table.Sitemap, "/sitemap.xml"},
	}
	for _, tc := range cases {
		got, err := tc.build()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestPostAndTagParams(t *testing.T) {
	table, err := NewTable("")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	post, err := table.Post("hello-world")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if post != "/posts/hello-world" {
		t.Fatalf("unexpected post url %q", post)
	}

	tag, err := table.Tag("go")
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if tag != "/tags/go" {
		t.Fatalf("unexpected tag url %q", tag)
	}
}

func TestBaseURLTableEmitsAbsoluteLinks(t *testing.T) {
	table, err := NewTable("https://blog.example.com/")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	post, err := table.Post("hello-world")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if post != "https://blog.example.com/posts/hello-world" {
		t.Fatalf("unexpected post url %q", post)
	}

	feed, err := table.Feed()
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if feed != "https://blog.example.com/feed.xml" {
		t.Fatalf("unexpected feed url %q", feed)
	}
}
