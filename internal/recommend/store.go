package recommend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

const (
	currentFile     = "CURRENT"
	partitionFile   = "partition.json"
	assignmentsFile = "assignments.json"
	tmpPrefix       = ".tmp-"
)

// FileStore guarda cada versión en su propio directorio y apunta a la
// vigente con el archivo CURRENT:
//
//	<dir>/CURRENT
//	<dir>/<version>/partition.json
//	<dir>/<version>/assignments.json
//
// CURRENT solo se reemplaza (temp + rename) cuando la versión nueva ya
// está completa en disco.
type FileStore struct {
	dir  string
	keep int
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, keep: 3}
}

func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) Load(ctx context.Context) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(f.dir, currentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, err
	}
	version := strings.TrimSpace(string(raw))
	if version == "" || strings.ContainsAny(version, `/\`) {
		return nil, fmt.Errorf("%w: CURRENT inválido", ErrModelCorrupt)
	}

	vdir := filepath.Join(f.dir, version)
	var a Artifact
	if err := readJSON(filepath.Join(vdir, partitionFile), &a.Partition); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelCorrupt, partitionFile, err)
	}
	if err := readJSON(filepath.Join(vdir, assignmentsFile), &a.Assignments); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelCorrupt, assignmentsFile, err)
	}
	if a.Partition.Version != version || !a.validate() {
		return nil, fmt.Errorf("%w: versión %s inconsistente", ErrModelCorrupt, version)
	}
	return &a, nil
}

func (f *FileStore) Save(ctx context.Context, a *Artifact) error {
	if a == nil || a.Partition.Version == "" {
		return errors.New("recommend: artefacto sin versión")
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.MkdirTemp(f.dir, tmpPrefix)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			os.RemoveAll(tmp)
		}
	}()

	if err := writeJSON(filepath.Join(tmp, partitionFile), a.Partition); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(tmp, assignmentsFile), a.Assignments); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vdir := filepath.Join(f.dir, a.Partition.Version)
	if err := os.Rename(tmp, vdir); err != nil {
		return err
	}
	committed = true

	if err := f.swapCurrent(a.Partition.Version); err != nil {
		os.RemoveAll(vdir)
		return err
	}
	f.prune(a.Partition.Version)
	return nil
}

func (f *FileStore) swapCurrent(version string) error {
	tmp, err := os.CreateTemp(f.dir, tmpPrefix+currentFile)
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(version + "\n"); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, filepath.Join(f.dir, currentFile)); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// prune borra versiones viejas, dejando las f.keep más nuevas. Los nombres
// de versión empiezan con timestamp, así que el orden léxico sirve.
func (f *FileStore) prune(current string) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") && e.Name() != current {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	for len(versions) > f.keep-1 {
		os.RemoveAll(filepath.Join(f.dir, versions[0]))
		versions = versions[1:]
	}
}

func readJSON(path string, dest any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func writeJSON(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
