package location

import (
	"errors"
	"testing"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/home", Route{Kind: RouteHome, Path: "/home"}},
		{"/home/", Route{Kind: RouteHome, Path: "/home"}},
		{"/settings?tab=2", Route{Kind: RouteSettings, Path: "/settings"}},
		{"/sets/abc123", Route{Kind: RouteStudySet, Path: "/sets/abc123", SetID: "abc123"}},
		{"/abc123", Route{Kind: RouteStudySet, Path: "/abc123", SetID: "abc123"}},
		{"/_share1", Route{Kind: RouteOther, Path: "/_share1"}},
		{"/@ana", Route{Kind: RouteProfile, Path: "/@ana", Username: "ana"}},
		{"/@ana/folders/bio-101", Route{Kind: RouteFolder, Path: "/@ana/folders/bio-101", Username: "ana", Slug: "bio-101"}},
		{"/@ana/sets/x", Route{Kind: RouteOther, Path: "/@ana/sets/x"}},
		{"/", Route{Kind: RouteOther, Path: "/"}},
	}
	for _, tt := range tests {
		if got := Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %+v, want %+v", tt.path, got, tt.want)
		}
	}
}

func TestRouteIsDetail(t *testing.T) {
	if !Match("/sets/x").IsDetail() || !Match("/@u/folders/f").IsDetail() {
		t.Fatal("set and folder routes should be detail routes")
	}
	if Match("/home").IsDetail() {
		t.Fatal("home is not a detail route")
	}
}

func TestHistoryPushBack(t *testing.T) {
	h, err := NewHistory("/home", "https://deck.example.com/")
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	if err := h.Push("/settings"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := h.Push("/settings"); err != nil {
		t.Fatalf("Push duplicate: %v", err)
	}
	if got := h.Location(); got != "/settings" {
		t.Fatalf("Location() = %q, want /settings", got)
	}
	if h.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", h.Depth())
	}
	if !h.Back() {
		t.Fatal("Back() = false, want true")
	}
	if h.Back() {
		t.Fatal("Back() at start should report false")
	}
	if got := h.Location(); got != "/home" {
		t.Fatalf("Location() = %q, want /home", got)
	}
}

func TestHistoryRejectsRelativePaths(t *testing.T) {
	if _, err := NewHistory("home", ""); err == nil {
		t.Fatal("expected error for relative start")
	}
	h, _ := NewHistory("/home", "")
	if err := h.Push("settings"); err == nil {
		t.Fatal("expected error for relative push")
	}
}

func TestOpenNewUsesPublicURL(t *testing.T) {
	var opened string
	h, _ := NewHistory("/home", "https://deck.example.com/", WithOpener(func(url string) error {
		opened = url
		return nil
	}))
	if err := h.OpenNew("/abc"); err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	if opened != "https://deck.example.com/abc" {
		t.Fatalf("opened %q", opened)
	}
	if h.Location() != "/home" {
		t.Fatalf("OpenNew must not navigate, location = %q", h.Location())
	}

	boom := errors.New("no browser")
	h2, _ := NewHistory("/home", "", WithOpener(func(string) error { return boom }))
	if err := h2.OpenNew("/x"); !errors.Is(err, boom) {
		t.Fatalf("OpenNew error = %v, want wrapped %v", err, boom)
	}
}
