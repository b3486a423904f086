package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/NattKh/Expedition33ModManager/internal/archive"
	"github.com/NattKh/Expedition33ModManager/internal/fetch"
	"github.com/NattKh/Expedition33ModManager/internal/logging"
	"github.com/NattKh/Expedition33ModManager/internal/modlist"
)

const (
	DefaultLoaderURL = "https://github.com/UE4SS-RE/RE-UE4SS/releases/download/experimental-latest/zDEV-UE4SS_v3.0.1-394-g437a8ff.zip"

	// LoaderPrefix is the top-level folder of the loader release that holds
	// the payload. Everything else in the release is ignored.
	LoaderPrefix = "UE4SS"
)

// Result summarises one extraction run.
type Result struct {
	Files   int
	Dirs    int
	Skipped int
}

type Installer struct {
	fetcher   fetch.Fetcher
	open      archive.Opener
	logger    logging.Logger
	loaderURL string
}

func New(fetcher fetch.Fetcher, logger logging.Logger) *Installer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Installer{
		fetcher:   fetcher,
		open:      archive.OpenZip,
		logger:    logger,
		loaderURL: DefaultLoaderURL,
	}
}

// WithOpener replaces the zip decoder, mainly so tests can feed in-memory archives.
func (i *Installer) WithOpener(open archive.Opener) *Installer {
	if open != nil {
		i.open = open
	}
	return i
}

func (i *Installer) WithLoaderURL(url string) *Installer {
	if url != "" {
		i.loaderURL = url
	}
	return i
}

func (i *Installer) LoaderURL() string {
	return i.loaderURL
}

// InstallLoaderPackage downloads the loader release and extracts the contents
// of its UE4SS folder directly into targetDir.
func (i *Installer) InstallLoaderPackage(ctx context.Context, targetDir string) (Result, error) {
	i.logger.Info("downloading loader", map[string]any{"url": i.loaderURL})
	data, err := i.fetcher.Fetch(ctx, i.loaderURL)
	if err != nil {
		var se *fetch.StatusError
		if errors.As(err, &se) {
			return Result{}, &HTTPStatusError{URL: i.loaderURL, StatusCode: se.StatusCode, Status: se.Status}
		}
		return Result{}, &FetchError{URL: i.loaderURL, Err: err}
	}
	r, err := i.open(data)
	if err != nil {
		return Result{}, &ArchiveFormatError{Source: i.loaderURL, Err: err}
	}

	res, err := i.extract(r, targetDir, func(name string) ([]string, string) {
		return loaderRelPath(name, LoaderPrefix)
	})
	if err != nil {
		return res, err
	}
	i.logger.Info("loader installed", map[string]any{
		"target_dir": targetDir, "written_files": res.Files, "created_dirs": res.Dirs, "skipped": res.Skipped,
	})
	return res, nil
}

// InstallModArchive extracts every entry of the local archive into the Mods
// folder of targetDir, keeping the archive's own layout.
func (i *Installer) InstallModArchive(archivePath, targetDir string) (Result, error) {
	modsDir := modlist.Dir(targetDir)
	if err := os.MkdirAll(modsDir, 0o755); err != nil {
		return Result{}, &IOError{Op: "create directory", Path: modsDir, Err: err}
	}
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return Result{}, &IOError{Op: "read", Path: archivePath, Err: err}
	}
	r, err := i.open(data)
	if err != nil {
		return Result{}, &ArchiveFormatError{Source: archivePath, Err: err}
	}

	i.logger.Info("installing mod", map[string]any{"archive": archivePath, "mods_dir": modsDir})
	res, err := i.extract(r, modsDir, modRelPath)
	if err != nil {
		return res, err
	}
	i.logger.Info("mod installed", map[string]any{
		"archive": archivePath, "written_files": res.Files, "created_dirs": res.Dirs, "skipped": res.Skipped,
	})
	return res, nil
}

// EnsureModsDir creates the Mods folder of targetDir and returns its path.
func EnsureModsDir(targetDir string) (string, error) {
	dir := modlist.Dir(targetDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &IOError{Op: "create directory", Path: dir, Err: err}
	}
	return dir, nil
}

// extract walks r in storage order. rewrite maps an entry name to the path
// components to write under root, or to a skip reason. The first I/O failure
// stops the run; whatever was written before it stays on disk.
func (i *Installer) extract(r archive.Reader, root string, rewrite func(string) ([]string, string)) (Result, error) {
	var res Result
	for _, e := range r.Entries() {
		rel, reason := rewrite(e.Name())
		if reason != "" {
			res.Skipped++
			i.logger.Debug("skipping entry", map[string]any{"entry": e.Name(), "reason": reason})
			continue
		}
		dest, err := resolveDest(root, rel)
		if err != nil {
			return res, &IOError{Op: "resolve", Path: filepath.Join(root, filepath.Join(rel...)), Err: err}
		}
		i.logger.Debug("extracting entry", map[string]any{"entry": e.Name(), "dest": dest})

		if e.IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return res, &IOError{Op: "create directory", Path: dest, Err: err}
			}
			res.Dirs++
			continue
		}
		if err := writeEntry(e, dest); err != nil {
			return res, err
		}
		res.Files++
	}
	return res, nil
}

func writeEntry(e archive.Entry, dest string) error {
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return &IOError{Op: "create directory", Path: parent, Err: err}
	}
	src, err := e.Open()
	if err != nil {
		return &ArchiveFormatError{Source: e.Name(), Err: err}
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return &IOError{Op: "create file", Path: dest, Err: err}
	}
	_, copyErr := io.Copy(out, entrySource{r: src})
	closeErr := out.Close()

	var re *entryReadError
	if errors.As(copyErr, &re) {
		return &ArchiveFormatError{Source: e.Name(), Err: re.err}
	}
	if copyErr != nil {
		return &IOError{Op: "write file", Path: dest, Err: copyErr}
	}
	if closeErr != nil {
		return &IOError{Op: "write file", Path: dest, Err: closeErr}
	}
	return nil
}

// entrySource tags read failures so a corrupt entry is reported as an archive
// problem rather than a disk problem.
type entrySource struct {
	r io.Reader
}

type entryReadError struct {
	err error
}

func (e *entryReadError) Error() string { return e.err.Error() }

func (s entrySource) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		return n, &entryReadError{err: err}
	}
	return n, err
}

// Describe renders a result for CLI output.
func (r Result) Describe() string {
	s := fmt.Sprintf("%d files, %d directories", r.Files, r.Dirs)
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", r.Skipped)
	}
	return s
}
