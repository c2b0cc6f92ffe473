package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.GetDownloadedCount() != 0 {
		t.Error("Expected initial download count to be 0")
	}

	if manager.IsDownloaded("1629307668568475652") {
		t.Error("Expected IsDownloaded to return false for non-existent file")
	}

	expectedPath := filepath.Join(tempDir, "1629307668568475652.mp4")
	if got := manager.VideoPath("1629307668568475652"); got != expectedPath {
		t.Errorf("VideoPath() = %s, want %s", got, expectedPath)
	}

	// the transcoder writes the file, not the manager
	if err := os.WriteFile(expectedPath, []byte("video"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if !manager.IsDownloaded("1629307668568475652") {
		t.Error("Expected IsDownloaded to return true for existing file")
	}

	if manager.GetDownloadedCount() != 1 {
		t.Errorf("Expected download count to be 1, got %d", manager.GetDownloadedCount())
	}

	if manager.GetOutputDir() != tempDir {
		t.Errorf("Expected output dir to be %s, got %s", tempDir, manager.GetOutputDir())
	}
}

func TestManagerCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if _, err := NewManager(dir); err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("Expected %s to be created as a directory", dir)
	}
}

func TestManagerRejectsFileAsDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := NewManager(file); err == nil {
		t.Error("Expected error when destination is a regular file")
	}
}

func TestScanExistingFiles(t *testing.T) {
	tempDir := t.TempDir()

	for _, name := range []string{"100.mp4", "200.mp4", "notes.txt", "300.mp4.part"} {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(tempDir, "400.mp4"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.GetDownloadedCount() != 2 {
		t.Errorf("Expected 2 existing videos, got %d", manager.GetDownloadedCount())
	}
	if !manager.IsDownloaded("100") || !manager.IsDownloaded("200") {
		t.Error("Expected existing videos to be detected")
	}
	if manager.IsDownloaded("notes") {
		t.Error("Non-video files should be ignored")
	}
}

func TestConcurrentMarkDownloaded(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			manager.MarkDownloaded(id)
			_ = manager.IsDownloaded(id)
		}(i)
	}
	wg.Wait()

	if manager.GetDownloadedCount() != 20 {
		t.Errorf("Expected 20 tracked videos, got %d", manager.GetDownloadedCount())
	}
}
