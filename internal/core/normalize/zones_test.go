package normalize

import "testing"

func TestDetectZones(t *testing.T) {
	text := "Run `make test.` first.\n```\nfmt.Println(\"x. Y\")\n```\n> Quoted. Line\nPlain."
	zs := DetectZones(text)

	var inline, fence, quote int
	for _, z := range zs {
		switch z.Type {
		case ZoneCodeInline:
			inline++
			if text[z.Start:z.End] != "make test." {
				t.Fatalf("inline zone = %q", text[z.Start:z.End])
			}
		case ZoneCodeFence:
			fence++
		case ZoneQuote:
			quote++
			if text[z.Start:z.End] != "Quoted. Line" {
				t.Fatalf("quote zone = %q", text[z.Start:z.End])
			}
		}
	}
	if inline != 1 || fence != 1 || quote != 1 {
		t.Fatalf("zones inline=%d fence=%d quote=%d, want 1 each", inline, fence, quote)
	}

	dot := len("Run `make test")
	if !zs.Contains(dot, ZoneCodeInline) {
		t.Fatalf("period inside inline code should be covered")
	}
	if zs.Contains(dot, ZoneQuote) {
		t.Fatalf("type filter ignored")
	}
	if zs.Contains(len(text) - 1) {
		t.Fatalf("plain trailing text should not be covered")
	}
}

func TestDetectZones_UnterminatedFence(t *testing.T) {
	text := "Intro.\n```\ncode. More code"
	zs := DetectZones(text)
	if !zs.Contains(len(text)-1, ZoneCodeFence) {
		t.Fatalf("unterminated fence should run to the end")
	}
	if DetectZones("") != nil {
		t.Fatalf("empty text should have no zones")
	}
}
