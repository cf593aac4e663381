package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/HerwigLab/IsoTools2/internal/gene"
)

// FileFingerprint holds stat-based identity for a source file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// ModelCache manages gob-serialized gene models on disk. Parsing a
// large GTF dominates startup time, so the parsed model is kept next
// to a fingerprint of its source annotation:
//
//	{dir}/model.gob       (serialized genes per chromosome)
//	{dir}/model.gob.meta  (annotation file fingerprint)
type ModelCache struct {
	dir string
}

// NewModelCache creates a model cache for the given directory.
func NewModelCache(dir string) *ModelCache {
	return &ModelCache{dir: dir}
}

func (mc *ModelCache) gobPath() string {
	return filepath.Join(mc.dir, "model.gob")
}

func (mc *ModelCache) metaPath() string {
	return filepath.Join(mc.dir, "model.gob.meta")
}

// Valid checks whether the cached model matches the current annotation file.
func (mc *ModelCache) Valid(gtf FileFingerprint) bool {
	meta, err := mc.readMeta()
	if err != nil {
		return false
	}

	if meta["gtf_size"] != strconv.FormatInt(gtf.Size, 10) {
		return false
	}
	if meta["gtf_modtime"] != gtf.ModTime.UTC().Format(time.RFC3339Nano) {
		return false
	}

	_, err = os.Stat(mc.gobPath())
	return err == nil
}

// Load reads a serialized gene model from disk and indexes it.
func (mc *ModelCache) Load() (*gene.Model, error) {
	f, err := os.Open(mc.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open model cache: %w", err)
	}
	defer f.Close()

	var data map[string][]*gene.Gene
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode model cache: %w", err)
	}

	m := gene.NewModel()
	for _, genes := range data {
		for _, g := range genes {
			m.AddGene(g)
		}
	}
	m.Index()
	return m, nil
}

// Write serializes a gene model to disk together with the fingerprint
// of the annotation it was parsed from.
func (mc *ModelCache) Write(m *gene.Model, gtf FileFingerprint) error {
	if err := os.MkdirAll(mc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data := make(map[string][]*gene.Gene)
	for _, chrom := range m.Chromosomes() {
		data[chrom] = m.GenesOnChrom(chrom)
	}

	f, err := os.Create(mc.gobPath())
	if err != nil {
		return fmt.Errorf("create model cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(mc.gobPath())
		return fmt.Errorf("encode model cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close model cache: %w", err)
	}

	return mc.writeMeta(gtf)
}

// Clear removes the cached model files.
func (mc *ModelCache) Clear() {
	os.Remove(mc.gobPath())
	os.Remove(mc.metaPath())
}

func (mc *ModelCache) writeMeta(gtf FileFingerprint) error {
	lines := []string{
		"gtf_path=" + gtf.Path,
		"gtf_size=" + strconv.FormatInt(gtf.Size, 10),
		"gtf_modtime=" + gtf.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(mc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (mc *ModelCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(mc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
