package build

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// ManifestName is the archive entry describing its contents
const ManifestName = "manifest.json"

// Manifest lists the runs captured in an archive
type Manifest struct {
	Created time.Time       `json:"created"`
	Runs    []ManifestEntry `json:"runs"`
}

// ManifestEntry describes one captured run
type ManifestEntry struct {
	Config string   `json:"config"`
	RunID  string   `json:"runId"`
	Mode   string   `json:"mode"`
	Files  []string `json:"files"`
}

// WriteArchive stores the in-memory files of every successful outcome in a
// gzipped tarball at dest. Each file is placed under its configuration name.
func WriteArchive(dest string, outcomes []Outcome) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, "failed to create archive directory")
	}

	file, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "failed to create archive file")
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzipWriter)

	now := time.Now()
	manifest := Manifest{Created: now, Runs: []ManifestEntry{}}
	for _, o := range outcomes {
		if o.Failed() || o.Result == nil {
			continue
		}
		entry := ManifestEntry{Config: o.Config, RunID: o.RunID, Mode: o.Mode.String(), Files: []string{}}
		for _, f := range o.Result.Files {
			name := path.Join(o.Config, filepath.ToSlash(f.FileName))
			if err := addDataToTar(tarWriter, []byte(f.FileContent), name, now); err != nil {
				return errors.Wrapf(err, "failed to add %s to archive", name)
			}
			entry.Files = append(entry.Files, name)
		}
		manifest.Runs = append(manifest.Runs, entry)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}
	if err := addDataToTar(tarWriter, data, ManifestName, now); err != nil {
		return errors.Wrap(err, "failed to add manifest to archive")
	}

	if err := tarWriter.Close(); err != nil {
		return errors.Wrap(err, "failed to finish archive")
	}
	if err := gzipWriter.Close(); err != nil {
		return errors.Wrap(err, "failed to finish archive")
	}
	return file.Close()
}

func addDataToTar(tw *tar.Writer, data []byte, name string, modTime time.Time) error {
	header := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0644,
		ModTime: modTime,
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	_, err := tw.Write(data)
	return err
}
