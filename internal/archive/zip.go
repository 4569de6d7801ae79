package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// Archiver packs a directory into a zip file.
type Archiver interface {
	Archive(sourceDir, zipPath string) ([]string, error)
}

// Zipper implements Archiver with archive/zip.
type Zipper struct {
	scanner  Scanner
	includes []string
	excludes []string
	log      logrus.FieldLogger
}

// NewZipper creates a Zipper that archives the files scanner selects.
func NewZipper(scanner Scanner, includes, excludes []string, log logrus.FieldLogger) *Zipper {
	return &Zipper{scanner: scanner, includes: includes, excludes: excludes, log: log}
}

// Archive writes every selected file under sourceDir into zipPath, with entry
// names relative to sourceDir, and returns the entry names. The zip is
// assembled next to zipPath and renamed into place, so a failure never
// leaves a truncated archive and never touches the source files.
func (z *Zipper) Archive(sourceDir, zipPath string) ([]string, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, domain.NewError(domain.ErrArchive, "archive", sourceDir, "receipts directory is missing", err)
	}
	if !info.IsDir() {
		return nil, domain.NewError(domain.ErrArchive, "archive", sourceDir, "receipts path is not a directory", nil)
	}

	entries, err := z.scanner.Scan(sourceDir, z.includes, z.excludes)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(zipPath), 0755); err != nil {
		return nil, domain.NewError(domain.ErrArchive, "archive", zipPath, "failed to create archive directory", err)
	}

	tmp := zipPath + ".part"
	if err := writeZip(tmp, sourceDir, entries); err != nil {
		os.Remove(tmp)
		return nil, domain.NewError(domain.ErrArchive, "archive", zipPath, "failed to write archive", err)
	}
	if err := os.Rename(tmp, zipPath); err != nil {
		os.Remove(tmp)
		return nil, domain.NewError(domain.ErrArchive, "archive", zipPath, "failed to move archive into place", err)
	}

	z.log.WithFields(logrus.Fields{"archive": zipPath, "entries": len(entries)}).Info("Receipts archived")
	return entries, nil
}

func writeZip(path, sourceDir string, entries []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := zip.NewWriter(f)
	for _, name := range entries {
		if err := addFile(w, filepath.Join(sourceDir, filepath.FromSlash(name)), name); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func addFile(w *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := w.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}
