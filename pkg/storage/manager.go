package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// VideoExt is the container extension written for every post
const VideoExt = ".mp4"

// Manager owns the destination directory and tracks which posts already
// have a video there
type Manager struct {
	outputDir        string
	downloadedVideos map[string]bool
	mu               sync.RWMutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir:        outputDir,
		downloadedVideos: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles scans the output directory for videos from earlier runs
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == VideoExt {
			m.downloadedVideos[strings.TrimSuffix(entry.Name(), VideoExt)] = true
		}
	}

	return nil
}

// VideoPath returns <dir>/<id>.mp4
func (m *Manager) VideoPath(id string) string {
	return filepath.Join(m.outputDir, id+VideoExt)
}

// IsDownloaded checks if a video for the given post is already present
func (m *Manager) IsDownloaded(id string) bool {
	m.mu.RLock()
	cached := m.downloadedVideos[id]
	m.mu.RUnlock()
	if cached {
		return true
	}

	if _, err := os.Stat(m.VideoPath(id)); err == nil {
		m.MarkDownloaded(id)
		return true
	}

	return false
}

// MarkDownloaded records that the video for id was written
func (m *Manager) MarkDownloaded(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadedVideos[id] = true
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetDownloadedCount returns the number of videos known to be present
func (m *Manager) GetDownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.downloadedVideos)
}
