package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/NattKh/Expedition33ModManager/internal/installer"
	"github.com/NattKh/Expedition33ModManager/internal/localmods"
	"github.com/NattKh/Expedition33ModManager/internal/logging"
	"github.com/NattKh/Expedition33ModManager/internal/modlist"
	"github.com/NattKh/Expedition33ModManager/internal/state"
)

// ErrNoTargetDir is returned when neither the caller, the cache nor the
// config names a game directory.
var ErrNoTargetDir = errors.New("no Win64 directory selected")

type Installer interface {
	InstallLoaderPackage(ctx context.Context, targetDir string) (installer.Result, error)
	InstallModArchive(archivePath, targetDir string) (installer.Result, error)
}

// Service runs one operation at a time and keeps the settings cache in step
// with what is on disk. Calls are expected to be serialised by the caller.
type Service struct {
	inst             Installer
	lister           modlist.Lister
	scanner          localmods.Scanner
	store            state.Store
	log              logging.Logger
	defaultTargetDir string
}

func New(inst Installer, store state.Store, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		inst:    inst,
		lister:  modlist.FilesystemLister{},
		scanner: localmods.FilesystemScanner{},
		store:   store,
		log:     log,
	}
}

func (s *Service) WithDefaultTargetDir(dir string) *Service {
	s.defaultTargetDir = dir
	return s
}

func (s *Service) WithListing(lister modlist.Lister, scanner localmods.Scanner) *Service {
	if lister != nil {
		s.lister = lister
	}
	if scanner != nil {
		s.scanner = scanner
	}
	return s
}

// ResolveTargetDir picks the explicit directory, then the last used one, then
// the configured default.
func (s *Service) ResolveTargetDir(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Clean(explicit), nil
	}
	c, err := s.store.Load()
	if err != nil {
		s.log.Error("load settings cache", err, nil)
	}
	if c.LastWin64Dir != "" {
		return filepath.Clean(c.LastWin64Dir), nil
	}
	if s.defaultTargetDir != "" {
		return filepath.Clean(s.defaultTargetDir), nil
	}
	return "", ErrNoTargetDir
}

func (s *Service) InstallLoader(ctx context.Context, targetDir string) (installer.Result, error) {
	c := s.loadCache()
	c.LastWin64Dir = targetDir

	res, err := s.inst.InstallLoaderPackage(ctx, targetDir)
	if err != nil {
		c.LastOutput = fmt.Sprintf("[ERROR] Failed to install UE4SS: %v", err)
		s.saveCache(c)
		return res, err
	}
	c.LastOutput = "[INFO] UE4SS installed successfully."
	s.refreshMods(&c, targetDir)
	if dirs, err := s.scanner.Scan(targetDir); err != nil {
		s.log.Error("scan target dir", err, map[string]any{"target_dir": targetDir})
	} else {
		c.LastScannedDirs = dirs
	}
	s.saveCache(c)
	return res, nil
}

func (s *Service) InstallMod(archivePath, targetDir string) (installer.Result, error) {
	c := s.loadCache()
	c.LastWin64Dir = targetDir
	name := filepath.Base(archivePath)

	res, err := s.inst.InstallModArchive(archivePath, targetDir)
	if err != nil {
		c.LastOutput = fmt.Sprintf("[ERROR] Failed to install mod '%s': %v", name, err)
	} else {
		c.LastOutput = fmt.Sprintf("[INFO] Mod '%s' installed successfully.", name)
	}
	// A failed install can still leave folders behind, so the list is refreshed either way.
	s.refreshMods(&c, targetDir)
	s.saveCache(c)
	return res, err
}

func (s *Service) ListMods(targetDir string) ([]string, error) {
	mods, err := s.lister.List(targetDir)
	if err != nil {
		return nil, err
	}
	c := s.loadCache()
	c.LastWin64Dir = targetDir
	c.LastInstalledMods = mods
	s.saveCache(c)
	return mods, nil
}

func (s *Service) Scan(targetDir string) ([]string, error) {
	dirs, err := s.scanner.Scan(targetDir)
	if err != nil {
		return nil, err
	}
	c := s.loadCache()
	c.LastWin64Dir = targetDir
	c.LastScannedDirs = dirs
	s.saveCache(c)
	return dirs, nil
}

// ModsDir creates the Mods folder if needed and returns its path.
func (s *Service) ModsDir(targetDir string) (string, error) {
	dir, err := installer.EnsureModsDir(targetDir)
	if err != nil {
		return "", err
	}
	c := s.loadCache()
	c.LastWin64Dir = targetDir
	s.saveCache(c)
	return dir, nil
}

func (s *Service) Cache() (state.Cache, error) {
	return s.store.Load()
}

func (s *Service) refreshMods(c *state.Cache, targetDir string) {
	mods, err := s.lister.List(targetDir)
	if err != nil {
		s.log.Error("list installed mods", err, map[string]any{"target_dir": targetDir})
		c.LastInstalledMods = nil
		return
	}
	c.LastInstalledMods = mods
}

func (s *Service) loadCache() state.Cache {
	c, err := s.store.Load()
	if err != nil {
		s.log.Error("load settings cache", err, nil)
		return state.Cache{}
	}
	return c
}

// saveCache logs write failures instead of returning them.
func (s *Service) saveCache(c state.Cache) {
	if err := s.store.Save(c); err != nil {
		s.log.Error("save settings cache", err, nil)
	}
}
