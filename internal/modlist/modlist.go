package modlist

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NattKh/Expedition33ModManager/internal/errs"
)

// DirName is the folder under the game binary directory that holds one
// subfolder per installed mod.
const DirName = "Mods"

func Dir(targetDir string) string {
	return filepath.Join(targetDir, DirName)
}

type Lister interface {
	List(targetDir string) ([]string, error)
}

type FilesystemLister struct{}

func (FilesystemLister) List(targetDir string) ([]string, error) {
	return ListInstalledMods(targetDir)
}

// ListInstalledMods returns the names of the immediate subdirectories of the
// Mods folder, in directory read order. A missing Mods folder is not an error.
// Files dropped straight into Mods are not mods and are left out.
func ListInstalledMods(targetDir string) ([]string, error) {
	dir := Dir(targetDir)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &errs.IOError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	f, err := os.Open(dir)
	if err != nil {
		return nil, &errs.IOError{Op: "read directory", Path: dir, Err: err}
	}
	defer f.Close()
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, &errs.IOError{Op: "read directory", Path: dir, Err: err}
	}

	mods := make([]string, 0, len(entries))
	for _, e := range entries {
		if isDir(dir, e) {
			mods = append(mods, e.Name())
		}
	}
	return mods, nil
}

// isDir follows symlinks, so a linked mod folder still counts.
func isDir(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}
