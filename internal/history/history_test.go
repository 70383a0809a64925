package history

import (
	"fmt"
	"os"
	"testing"
)

func TestLoadEmptyHistory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	hist, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(hist.Entries) != 0 {
		t.Errorf("expected empty history, got %d entries", len(hist.Entries))
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	hist := &History{}
	hist.AddEntry(NewEntry("extract audio", "ffmpeg -i in.mp4 -vn out.mp3", true, false))
	hist.AddEntry(NewEntry("convert to gif", "ffmpeg -i clip.mp4 clip.gif", false, true))

	if err := hist.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(loaded.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded.Entries))
	}

	first := loaded.Entries[0]
	if first.Instruction != "extract audio" || first.Command != "ffmpeg -i in.mp4 -vn out.mp3" {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if !first.Executed || first.Edited {
		t.Errorf("first entry flags wrong: %+v", first)
	}

	second := loaded.Entries[1]
	if second.Executed || !second.Edited {
		t.Errorf("second entry flags wrong: %+v", second)
	}
}

func TestAddEntryDropsOldestBeyondCap(t *testing.T) {
	hist := &History{}

	for i := 0; i < maxEntries+5; i++ {
		hist.AddEntry(NewEntry(fmt.Sprintf("request %d", i), "ffmpeg", false, false))
	}

	if len(hist.Entries) != maxEntries {
		t.Fatalf("entries = %d, want cap %d", len(hist.Entries), maxEntries)
	}

	if got := hist.Entries[0].Instruction; got != "request 5" {
		t.Errorf("oldest surviving entry = %q, want request 5", got)
	}
	if got := hist.Entries[len(hist.Entries)-1].Instruction; got != fmt.Sprintf("request %d", maxEntries+4) {
		t.Errorf("newest entry = %q", got)
	}
}

func TestLoadCorruptHistory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	hist := &History{}
	if err := hist.Save(); err != nil {
		t.Fatal(err)
	}

	path, err := GetHistoryPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected error for corrupt history file")
	}
}
