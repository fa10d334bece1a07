package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// BundleSpec is the input to WriteBundle.
type BundleSpec struct {
	Dir         string
	Title       string
	Description string
	Script      string
	AudioPath   string // source audio file to copy in, empty if none yet
	WorkflowID  string
	SpeechIDs   []string
}

// bundleReadme is the metadata file written alongside podcast.xml.
type bundleReadme struct {
	WorkflowID  string    `json:"workflowId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GeneratedAt time.Time `json:"generatedAt"`
	HasAudio    bool      `json:"hasAudio"`
	SpeechIDs   []string  `json:"speechIds"`
}

// WriteBundle produces a self-contained directory: podcast.xml (RSS
// with a relative enclosure), an audio/ subfolder with the source audio
// file copied in when present, and a README.json describing the bundle.
func WriteBundle(spec BundleSpec) error {
	audioDir := filepath.Join(spec.Dir, "audio")
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		return fmt.Errorf("create bundle audio dir: %w", err)
	}

	hasAudio := false
	relEnclosure := ""
	if spec.AudioPath != "" {
		destName := filepath.Base(spec.AudioPath)
		destPath := filepath.Join(audioDir, destName)
		if err := copyFile(spec.AudioPath, destPath); err != nil {
			return fmt.Errorf("copy audio into bundle: %w", err)
		}
		relEnclosure = filepath.Join("audio", destName)
		hasAudio = true
	}

	rss, err := BuildRSS(RSSSpec{
		Title:       spec.Title,
		Description: spec.Description,
		AudioURL:    relEnclosure,
		WorkflowID:  spec.WorkflowID,
		Local:       true,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(spec.Dir, "podcast.xml"), rss, 0644); err != nil {
		return fmt.Errorf("write podcast.xml: %w", err)
	}

	readme := bundleReadme{
		WorkflowID:  spec.WorkflowID,
		Title:       spec.Title,
		Description: spec.Description,
		GeneratedAt: time.Now().UTC(),
		HasAudio:    hasAudio,
		SpeechIDs:   spec.SpeechIDs,
	}
	readmeJSON, err := json.MarshalIndent(readme, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle readme: %w", err)
	}
	if err := os.WriteFile(filepath.Join(spec.Dir, "README.json"), readmeJSON, 0644); err != nil {
		return fmt.Errorf("write README.json: %w", err)
	}

	return nil
}

// WriteRSSFile renders and writes a standalone RSS file (the
// non-bundle finalize path).
func WriteRSSFile(path string, spec RSSSpec) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create rss dir: %w", err)
	}
	rss, err := BuildRSS(spec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, rss, 0644); err != nil {
		return fmt.Errorf("write rss file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
