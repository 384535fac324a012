package metaconfig

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/renameio/v2"
	log "github.com/sirupsen/logrus"
)

// File is content to be written below a Writer's root
type File struct {
	// Name identifies the file in logs, usually the meta-section header
	Name    string
	Path    string
	Content string
}

// Result is a file the Writer committed
type Result struct {
	Name     string `json:"name"`
	FullPath string `json:"path"`
	Hash     []byte `json:"-"`
	// Changed is false when the file already had this content
	Changed bool `json:"changed"`
}

// Writer writes files below a root directory. Paths, absolute or not,
// never resolve outside the root.
type Writer struct {
	Root string
	hash hash.Hash
}

// OptionFn customizes a Writer
type OptionFn func(w *Writer)

// WithHasher replaces the sha256 hash used to detect unchanged files
func WithHasher(h hash.Hash) OptionFn {
	return func(w *Writer) {
		w.hash = h
	}
}

// NewWriter creates a writer for root
func NewWriter(root string, opts ...OptionFn) *Writer {
	w := &Writer{Root: root}
	for _, opt := range opts {
		opt(w)
	}
	if w.hash == nil {
		w.hash = sha256.New()
	}
	return w
}

// Path returns the location of path below the root
func (w *Writer) Path(path string) (string, error) {
	root, err := w.checkRoot()
	if err != nil {
		return "", err
	}
	full, err := securejoin.SecureJoin(root, path)
	if err != nil {
		return "", fmt.Errorf("scope %q below %q: %w", path, root, err)
	}
	return full, nil
}

// Commit writes files whose content differs from what is on disk
func (w *Writer) Commit(files []*File) ([]*Result, error) {
	if _, err := w.checkRoot(); err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(files))
	for _, f := range files {
		r, err := w.commitFile(f)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (w *Writer) commitFile(f *File) (*Result, error) {
	fullPath, err := w.Path(f.Path)
	if err != nil {
		return nil, err
	}

	var dstHash []byte
	if file, err := os.Open(fullPath); err == nil {
		w.hash.Reset()
		_, _ = io.Copy(w.hash, file)
		file.Close()
		dstHash = w.hash.Sum(nil)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open %q: %w", fullPath, err)
	}

	w.hash.Reset()
	_, _ = io.WriteString(w.hash, f.Content)
	r := &Result{Name: f.Name, FullPath: fullPath, Hash: w.hash.Sum(nil)}

	if bytes.Equal(r.Hash, dstHash) {
		log.WithFields(log.Fields{"name": f.Name, "file": fullPath}).Debug("file is up to date")
		return r, nil
	}
	if err := writeFile(fullPath, []byte(f.Content)); err != nil {
		return nil, err
	}
	r.Changed = true
	log.WithFields(log.Fields{"name": f.Name, "file": fullPath}).Info("write file")
	return r, nil
}

func (w *Writer) checkRoot() (string, error) {
	dir := w.Root
	if !filepath.IsAbs(dir) {
		var err error
		dir, err = filepath.Abs(dir)
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create root %q: %w", dir, err)
	}
	return dir, nil
}

// writeFile replaces path atomically, creating its directory if needed
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir of %q: %w", path, err)
	}
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file %q: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			log.WithFields(log.Fields{"file": path}).Debug("cleanup pending file: ", err)
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %q: %w", path, err)
	}
	return nil
}
