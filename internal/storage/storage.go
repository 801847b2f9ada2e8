// Package storage persists report snapshots as timestamped JSON files and
// prunes old ones. Snapshots are the durable record of each run; everything
// in them can be re-rendered later without touching any API.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"brandpulse/internal/report"
)

const (
	filePrefix = "sentiment_report_"
	timeLayout = "20060102_150405"
)

// Store writes and prunes report snapshots under a single directory.
type Store struct {
	dir string
	log *logrus.Entry
}

// New creates the snapshot directory if needed.
func New(dir string, log *logrus.Entry) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Save writes the report as a timestamped JSON snapshot and returns its
// path.
func (s *Store) Save(rep *report.Report) (string, error) {
	name := filePrefix + rep.Metadata.GeneratedAt.UTC().Format(timeLayout) + ".json"
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	s.log.WithField("path", path).Info("report snapshot saved")
	return path, nil
}

// SaveArtifact writes an arbitrary run artifact (raw posts, classified
// posts) as a timestamped JSON file next to the report snapshots. Artifacts
// share the retention window but never feed RecentScores.
func (s *Store) SaveArtifact(name string, at time.Time, v any) (string, error) {
	path := filepath.Join(s.dir, name+"_"+at.UTC().Format(timeLayout)+".json")
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s artifact: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s artifact: %w", name, err)
	}
	s.log.WithField("path", path).Debug("run artifact saved")
	return path, nil
}

// Load reads one snapshot back.
func (s *Store) Load(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &rep, nil
}

// RecentScores returns the sentiment scores of the newest n snapshots in
// chronological order, for trend computation.
func (s *Store) RecentScores(n int) ([]float64, error) {
	paths, err := s.snapshots()
	if err != nil {
		return nil, err
	}
	if len(paths) > n {
		paths = paths[len(paths)-n:]
	}

	scores := make([]float64, 0, len(paths))
	for _, path := range paths {
		rep, err := s.Load(path)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("skipping unreadable snapshot")
			continue
		}
		scores = append(scores, rep.RawData.Summary.SentimentScore)
	}
	return scores, nil
}

// CleanupOld deletes snapshots and artifacts older than the retention
// window and reports how many were removed.
func (s *Store) CleanupOld(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}

	cutoff := time.Now().UTC().Add(-retention)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		ts, ok := snapshotTime(path)
		if !ok || !ts.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.log.WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("failed to remove old snapshot")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("old report snapshots cleaned up")
	}
	return removed, nil
}

// snapshots lists snapshot paths sorted oldest first. The timestamped names
// make lexical order chronological.
func (s *Store) snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// snapshotTime parses the trailing timestamp of any timestamped file name.
// The layout itself contains one underscore, so the timestamp is the last
// two underscore-separated fields.
func snapshotTime(path string) (time.Time, bool) {
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	ts, err := time.Parse(timeLayout, parts[len(parts)-2]+"_"+parts[len(parts)-1])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
