// Package configuration locates, provides, loads and saves configuration
// files.
//
// Clients name a location property (the directory holding the file) and
// the file itself. A Locator resolves the file's path:
//
//  1. the directory named by the location property, set as an override on a
//     viper instance (typically bound to a command-line flag) or as an
//     environment variable. It must be a readable directory.
//  2. the current working directory, if the file exists there.
//  3. the home directory of the current user, whether the file exists there
//     or not.
//
// A Provider opens the located file, falling back to bundled resources. A
// Binder decodes and encodes typed configurations, and LoadProperties turns
// a configuration file into a properties bag.
package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/conneroisu/smallgears/pkg/errors"
)

// Locator identifies the designated path to a configuration file, whether
// the file exists or not.
type Locator struct {
	property string
	filename string

	viper   *viper.Viper
	getenv  func(string) (string, bool)
	workDir func() (string, error)
	homeDir func() (string, error)
}

// LocatorOption modifies a Locator.
type LocatorOption func(*Locator)

// WithViper makes the locator consult v for the location property before
// the environment.
func WithViper(v *viper.Viper) LocatorOption {
	return func(l *Locator) { l.viper = v }
}

// WithGetenv replaces os.LookupEnv.
func WithGetenv(fn func(string) (string, bool)) LocatorOption {
	return func(l *Locator) { l.getenv = fn }
}

// WithWorkingDir replaces os.Getwd.
func WithWorkingDir(fn func() (string, error)) LocatorOption {
	return func(l *Locator) { l.workDir = fn }
}

// WithHomeDir replaces os.UserHomeDir.
func WithHomeDir(fn func() (string, error)) LocatorOption {
	return func(l *Locator) { l.homeDir = fn }
}

// NewLocator creates a locator for filename, whose directory may be named
// by the location property.
func NewLocator(property, filename string, opts ...LocatorOption) *Locator {
	errors.Require(property != "", errors.ErrCodeEmptyName, "location property must not be empty")
	errors.Require(filename != "", errors.ErrCodeEmptyName, "configuration filename must not be empty")

	l := &Locator{
		property: property,
		filename: filename,
		getenv:   os.LookupEnv,
		workDir:  os.Getwd,
		homeDir:  os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Property returns the name of the location property.
func (l *Locator) Property() string { return l.property }

// Filename returns the name of the configuration file.
func (l *Locator) Filename() string { return l.filename }

// Locate returns the path to the configuration. It fails if the location
// property is set but does not name a readable directory.
func (l *Locator) Locate() (string, error) {
	dir, found, err := l.locateDirectory()
	if err != nil {
		return "", err
	}

	if !found {
		if dir, err = l.workDir(); err != nil {
			return "", errors.Unchecked(errors.ErrCodeConfigUnreadable, "cannot determine the working directory", err)
		}

		if !validFileAt(filepath.Join(dir, l.filename)) {
			if dir, err = l.homeDir(); err != nil {
				return "", errors.Unchecked(errors.ErrCodeConfigUnreadable, "cannot determine the home directory", err)
			}
		}
	}

	return filepath.Join(dir, l.filename), nil
}

func (l *Locator) locateDirectory() (string, bool, error) {
	if l.viper != nil && l.viper.IsSet(l.property) {
		dir, err := l.validDirectoryAt(l.viper.GetString(l.property))
		return dir, true, err
	}

	if location, ok := l.getenv(l.property); ok {
		dir, err := l.validDirectoryAt(location)
		return dir, true, err
	}

	return "", false, nil
}

func (l *Locator) validDirectoryAt(location string) (string, error) {
	path := filepath.Clean(location)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if f, err := os.Open(path); err == nil {
			_ = f.Close()
			return path, nil
		}
	}

	return "", errors.NewConfigError(errors.ErrCodeInvalidLocation,
		fmt.Sprintf("invalid configuration @ %s: not a readable directory", path)).
		WithContext("property", l.property).
		WithContext("location", location)
}

func validFileAt(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
