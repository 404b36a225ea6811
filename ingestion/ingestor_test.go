package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apiarylab/apiary-agent/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSplitWindows(t *testing.T) {
	text := strings.Repeat("a", 250)
	windows := SplitWindows(text, 100)

	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if len(windows[0]) != 100 || len(windows[1]) != 100 || len(windows[2]) != 50 {
		t.Fatalf("unexpected window sizes: %d, %d, %d", len(windows[0]), len(windows[1]), len(windows[2]))
	}
	if windows[0]+windows[1]+windows[2] != text {
		t.Fatal("windows must be non-overlapping and cover the text")
	}
}

func TestSplitWindowsRuneSafe(t *testing.T) {
	text := strings.Repeat("пчёл", 30)
	for _, window := range SplitWindows(text, 7) {
		if !strings.ContainsRune("пчёл", []rune(window)[0]) {
			t.Fatalf("window starts mid-character: %q", window)
		}
		if strings.ContainsRune(window, '�') {
			t.Fatalf("window contains a broken rune: %q", window)
		}
	}
}

func TestScanFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()

	inDomain := strings.Repeat("asalarichilik haqida foydali maslahatlar to'plami. ", 6)
	writeFile(t, dir, "b_second.txt", inDomain)
	writeFile(t, dir, "a_first.txt", inDomain)
	writeFile(t, dir, "offtopic.txt", strings.Repeat("completely unrelated text about cooking pasta dishes. ", 6))
	writeFile(t, dir, "short.txt", "asal")
	writeFile(t, dir, "ignored.bin", inDomain)

	ing := NewIngestor(domain.NewClassifier(), 100, 50, nil)
	chunks, err := ing.Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected retained chunks")
	}

	// File order is name order, windows in document order within a file.
	sawSecond := false
	for _, chunk := range chunks {
		switch chunk.Source {
		case "a_first.txt":
			if sawSecond {
				t.Fatal("chunks from a_first.txt must precede b_second.txt")
			}
		case "b_second.txt":
			sawSecond = true
		default:
			t.Fatalf("unexpected chunk source %q", chunk.Source)
		}
		if len([]rune(chunk.Text)) <= 50 {
			t.Fatalf("chunk below minimum length retained: %q", chunk.Text)
		}
	}
	if !sawSecond {
		t.Fatal("expected chunks from b_second.txt")
	}
}

func TestScanStableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("ari oilasi parvarishi bo'yicha qo'llanma bo'limi. ", 8)
	writeFile(t, dir, "one.txt", content)
	writeFile(t, dir, "two.txt", content)

	ing := NewIngestor(domain.NewClassifier(), 120, 50, nil)
	first, err := ing.Scan(dir)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := ing.Scan(dir)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk count changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestScanEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "offtopic.txt", strings.Repeat("nothing related in this file at all, just filler words. ", 4))

	ing := NewIngestor(domain.NewClassifier(), 100, 50, nil)
	if _, err := ing.Scan(dir); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestScanSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", strings.Repeat("asalari uyasini qishga tayyorlash bo'yicha maslahat. ", 6))
	// A .pdf that is not a PDF must be skipped, not abort the scan.
	writeFile(t, dir, "broken.pdf", "not a pdf")

	ing := NewIngestor(domain.NewClassifier(), 100, 50, nil)
	chunks, err := ing.Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, chunk := range chunks {
		if chunk.Source != "good.txt" {
			t.Fatalf("unexpected chunk source %q", chunk.Source)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]DocumentFormat{
		"notes.txt":  FormatText,
		"guide.PDF":  FormatPDF,
		"guide.docx": FormatDOCX,
		"image.png":  FormatUnknown,
		"noext":      FormatUnknown,
	}
	for path, want := range cases {
		if got := DetectFormat(path); got != want {
			t.Fatalf("DetectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}
