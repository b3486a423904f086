package localmods

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NattKh/Expedition33ModManager/internal/errs"
)

type Scanner interface {
	Scan(root string) ([]string, error)
}

type FilesystemScanner struct{}

func (FilesystemScanner) Scan(root string) ([]string, error) {
	return ScanDirectoryTree(root)
}

// ScanDirectoryTree returns every directory below root, relative to root and
// slash-separated. Files are ignored. A symlink to a directory is listed but
// not descended into. A missing root yields an empty result; an unreadable
// subdirectory aborts the whole scan.
func ScanDirectoryTree(root string) ([]string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &errs.IOError{Op: "stat", Path: root, Err: err}
	}
	walkRoot := root
	if info.Mode()&fs.ModeSymlink != 0 {
		if _, err := os.Stat(root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return []string{}, nil
			}
			return nil, &errs.IOError{Op: "stat", Path: root, Err: err}
		}
		// A trailing separator makes the walk follow a linked root.
		walkRoot = root + string(filepath.Separator)
	}

	dirs := []string{}
	err = filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &errs.IOError{Op: "scan", Path: p, Err: err}
		}
		if !d.IsDir() && !linksToDir(p, d) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return &errs.IOError{Op: "scan", Path: p, Err: err}
		}
		if rel == "." {
			return nil
		}
		dirs = append(dirs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// linksToDir reports a symlink whose target is a directory. Dangling or
// looping links are treated as files.
func linksToDir(p string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
