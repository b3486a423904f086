package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/NattKh/Expedition33ModManager/internal/archive"
	"github.com/NattKh/Expedition33ModManager/internal/fetch"
	"github.com/NattKh/Expedition33ModManager/internal/modlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zipItem struct {
	name    string
	content string
}

func buildZip(t *testing.T, items ...zipItem) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, it := range items {
		w, err := zw.Create(it.name)
		require.NoError(t, err)
		if it.content != "" {
			_, err = w.Write([]byte(it.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeZip(t *testing.T, items ...zipItem) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mod.zip")
	require.NoError(t, os.WriteFile(p, buildZip(t, items...), 0o644))
	return p
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

func memoryOpener(r archive.MemoryReader) archive.Opener {
	return func([]byte) (archive.Reader, error) { return r, nil }
}

func TestInstallLoaderPackageStripsPrefix(t *testing.T) {
	payload := buildZip(t,
		zipItem{name: "UE4SS/"},
		zipItem{name: "UE4SS/dwmapi.dll", content: "proxy"},
		zipItem{name: "UE4SS/ue4ss/UE4SS-settings.ini", content: "[General]"},
		zipItem{name: "ue4ss/Mods/mods.txt", content: "BPModLoaderMod : 1"},
		zipItem{name: "README.md", content: "readme"},
		zipItem{name: "docs/changelog.md", content: "log"},
	)
	f := &fetch.Static{Body: payload}
	target := t.TempDir()

	res, err := New(f, nil).WithLoaderURL("https://example.com/ue4ss.zip").InstallLoaderPackage(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/ue4ss.zip"}, f.Requested)
	assert.Equal(t, Result{Files: 3, Dirs: 0, Skipped: 3}, res)

	assert.Equal(t, "proxy", readFile(t, filepath.Join(target, "dwmapi.dll")))
	assert.Equal(t, "[General]", readFile(t, filepath.Join(target, "ue4ss", "UE4SS-settings.ini")))
	assert.Equal(t, "BPModLoaderMod : 1", readFile(t, filepath.Join(target, "Mods", "mods.txt")))

	for _, absent := range []string{"README.md", "docs", "UE4SS/dwmapi.dll"} {
		_, err := os.Stat(filepath.Join(target, filepath.FromSlash(absent)))
		assert.True(t, os.IsNotExist(err), "%s should not exist", absent)
	}
}

func TestInstallLoaderPackageCreatesDirectoryEntries(t *testing.T) {
	payload := buildZip(t,
		zipItem{name: "UE4SS/Mods/"},
		zipItem{name: "UE4SS/Mods/Keybinds/Scripts/"},
	)
	target := t.TempDir()

	res, err := New(&fetch.Static{Body: payload}, nil).InstallLoaderPackage(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dirs)

	info, err := os.Stat(filepath.Join(target, "Mods", "Keybinds", "Scripts"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInstallLoaderPackageErrors(t *testing.T) {
	cases := []struct {
		name    string
		fetcher *fetch.Static
		want    error
	}{
		{
			name:    "status",
			fetcher: &fetch.Static{Err: &fetch.StatusError{URL: "u", StatusCode: 404, Status: "404 Not Found"}},
			want:    ErrHTTPStatus,
		},
		{
			name:    "network",
			fetcher: &fetch.Static{Err: errors.New("dial tcp: connection refused")},
			want:    ErrFetch,
		},
		{
			name:    "not a zip",
			fetcher: &fetch.Static{Body: []byte("<html>rate limited</html>")},
			want:    ErrArchiveFormat,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := t.TempDir()
			_, err := New(tc.fetcher, nil).InstallLoaderPackage(context.Background(), target)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			entries, err := os.ReadDir(target)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}

	var hs *HTTPStatusError
	_, err := New(cases[0].fetcher, nil).InstallLoaderPackage(context.Background(), t.TempDir())
	require.True(t, errors.As(err, &hs))
	assert.Equal(t, 404, hs.StatusCode)
}

func TestInstallLoaderPackageSkipsUnsafeEntries(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "Win64")
	require.NoError(t, os.MkdirAll(target, 0o755))

	inst := New(&fetch.Static{Body: []byte("ignored")}, nil).WithOpener(memoryOpener(archive.MemoryReader{
		{Path: "UE4SS/../../escape.txt", Content: []byte("x")},
		{Path: "/UE4SS/abs.txt", Content: []byte("x")},
		{Path: "UE4SS/ok.txt", Content: []byte("ok")},
	}))
	res, err := inst.InstallLoaderPackage(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, Result{Files: 1, Skipped: 2}, res)

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "ok", readFile(t, filepath.Join(target, "ok.txt")))
}

func TestInstallModArchiveVerbatim(t *testing.T) {
	archivePath := writeZip(t,
		zipItem{name: "Keybinds/"},
		zipItem{name: "Keybinds/Scripts/main.lua", content: "print('hi')"},
		zipItem{name: "Keybinds/enabled.txt"},
	)
	target := t.TempDir()

	res, err := New(nil, nil).InstallModArchive(archivePath, target)
	require.NoError(t, err)
	assert.Equal(t, Result{Files: 2, Dirs: 1}, res)

	mods := modlist.Dir(target)
	assert.Equal(t, "print('hi')", readFile(t, filepath.Join(mods, "Keybinds", "Scripts", "main.lua")))
	assert.Equal(t, "", readFile(t, filepath.Join(mods, "Keybinds", "enabled.txt")))
}

func TestInstallModArchiveIdempotent(t *testing.T) {
	archivePath := writeZip(t, zipItem{name: "FastTravel/Scripts/main.lua", content: "v1"})
	target := t.TempDir()
	inst := New(nil, nil)

	_, err := inst.InstallModArchive(archivePath, target)
	require.NoError(t, err)
	first := readFile(t, filepath.Join(modlist.Dir(target), "FastTravel", "Scripts", "main.lua"))

	_, err = inst.InstallModArchive(archivePath, target)
	require.NoError(t, err)
	second := readFile(t, filepath.Join(modlist.Dir(target), "FastTravel", "Scripts", "main.lua"))
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(filepath.Join(modlist.Dir(target), "FastTravel", "Scripts"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInstallModArchiveOverwritesLongerFile(t *testing.T) {
	target := t.TempDir()
	dest := filepath.Join(modlist.Dir(target), "Mod", "config.ini")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("a much longer previous content"), 0o644))

	_, err := New(nil, nil).InstallModArchive(writeZip(t, zipItem{name: "Mod/config.ini", content: "short"}), target)
	require.NoError(t, err)
	assert.Equal(t, "short", readFile(t, dest))
}

func TestInstallModArchiveRejectsEscapes(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "game", "Win64")
	require.NoError(t, os.MkdirAll(target, 0o755))
	archivePath := filepath.Join(root, "evil.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("stub"), 0o644))

	inst := New(nil, nil).WithOpener(memoryOpener(archive.MemoryReader{
		{Path: "../../escape.txt", Content: []byte("pwn")},
		{Path: "Good/../../escape2.txt", Content: []byte("pwn")},
		{Path: `..\..\escape3.txt`, Content: []byte("pwn")},
		{Path: "/etc/abs.txt", Content: []byte("pwn")},
		{Path: `C:\Windows\win.txt`, Content: []byte("pwn")},
		{Path: "Good/ok.txt", Content: []byte("ok")},
	}))
	res, err := inst.InstallModArchive(archivePath, target)
	require.NoError(t, err)
	assert.Equal(t, Result{Files: 1, Skipped: 5}, res)

	for _, p := range []string{
		filepath.Join(root, "game", "escape.txt"),
		filepath.Join(target, "escape.txt"),
		filepath.Join(target, "escape2.txt"),
		filepath.Join(root, "game", "escape3.txt"),
	} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s must not exist", p)
	}
	assert.Equal(t, "ok", readFile(t, filepath.Join(modlist.Dir(target), "Good", "ok.txt")))
}

func TestInstallModArchiveDoesNotFollowPlantedSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	outside := filepath.Join(root, "outside")
	target := filepath.Join(root, "Win64")
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.MkdirAll(modlist.Dir(target), 0o755))
	require.NoError(t, os.Symlink(outside, filepath.Join(modlist.Dir(target), "Linked")))

	_, err := New(nil, nil).InstallModArchive(writeZip(t, zipItem{name: "Linked/pwn.txt", content: "x"}), target)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outside, "pwn.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestInstallModArchiveMissingArchive(t *testing.T) {
	target := t.TempDir()
	_, err := New(nil, nil).InstallModArchive(filepath.Join(target, "missing.zip"), target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, filepath.Join(target, "missing.zip"), ioErr.Path)

	info, statErr := os.Stat(modlist.Dir(target))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestInstallModArchiveInvalidArchive(t *testing.T) {
	target := t.TempDir()
	p := filepath.Join(target, "mod.zip")
	require.NoError(t, os.WriteFile(p, []byte("definitely not a zip"), 0o644))

	_, err := New(nil, nil).InstallModArchive(p, target)
	assert.ErrorIs(t, err, ErrArchiveFormat)
}

func TestInstallModArchiveAbortsOnWriteFailureWithoutRollback(t *testing.T) {
	target := t.TempDir()
	mods := modlist.Dir(target)
	require.NoError(t, os.MkdirAll(mods, 0o755))
	// A plain file where the archive expects a folder.
	require.NoError(t, os.WriteFile(filepath.Join(mods, "Blocked"), []byte("file"), 0o644))

	archivePath := writeZip(t,
		zipItem{name: "First/a.txt", content: "a"},
		zipItem{name: "Blocked/b.txt", content: "b"},
		zipItem{name: "Last/c.txt", content: "c"},
	)
	res, err := New(nil, nil).InstallModArchive(archivePath, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, 1, res.Files)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Contains(t, ioErr.Path, "Blocked")

	assert.Equal(t, "a", readFile(t, filepath.Join(mods, "First", "a.txt")))
	_, err = os.Stat(filepath.Join(mods, "Last"))
	assert.True(t, os.IsNotExist(err))
}

func TestInstallModArchiveCorruptEntry(t *testing.T) {
	target := t.TempDir()
	archivePath := filepath.Join(target, "mod.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("stub"), 0o644))

	inst := New(nil, nil).WithOpener(memoryOpener(archive.MemoryReader{
		{Path: "Mod/data.pak", OpenErr: errors.New("zip: unsupported compression algorithm")},
	}))
	_, err := inst.InstallModArchive(archivePath, target)
	assert.ErrorIs(t, err, ErrArchiveFormat)
}

func TestEnsureModsDir(t *testing.T) {
	target := t.TempDir()
	dir, err := EnsureModsDir(target)
	require.NoError(t, err)
	assert.Equal(t, modlist.Dir(target), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResultDescribe(t *testing.T) {
	assert.Equal(t, "3 files, 1 directories", Result{Files: 3, Dirs: 1}.Describe())
	assert.Equal(t, "0 files, 0 directories, 2 skipped", Result{Skipped: 2}.Describe())
}
