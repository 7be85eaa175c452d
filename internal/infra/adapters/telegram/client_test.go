//go:build !integration

package telegram

import "testing"

func TestIsPhotoPath(t *testing.T) {
	photos := []string{"a.jpg", "b.JPG", "dir/c.jpeg", "d.png", "e.webp"}
	for _, p := range photos {
		if !isPhotoPath(p) {
			t.Errorf("isPhotoPath(%q) = false", p)
		}
	}
	others := []string{"a.gif", "b.mp4", "c.pdf", "noext", "d.jpg.txt"}
	for _, p := range others {
		if isPhotoPath(p) {
			t.Errorf("isPhotoPath(%q) = true", p)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncate("0123456789", 8); got != "01234567..." {
		t.Errorf("truncate(10 chars, 8) = %q", got)
	}
	if got := truncate("0123456789", 10); got != "0123456789" {
		t.Errorf("exact fit changed: %q", got)
	}
}
