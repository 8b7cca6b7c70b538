package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("")
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s, want %s", got, want)
	}
}

func TestETagRoundTrip(t *testing.T) {
	sum := Sum([]byte("---\ntitle: Go Maps\n---\n"))
	tag := ETag(sum)
	if tag != `"`+sum+`"` {
		t.Errorf("ETag = %s, want the full quoted checksum", tag)
	}

	for _, header := range []string{tag, sum, "W/" + tag, " " + tag + " "} {
		if got := ParseETag(header); got != sum {
			t.Errorf("ParseETag(%q) = %q, want %q", header, got, sum)
		}
	}
}
