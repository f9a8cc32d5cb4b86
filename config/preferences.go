package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
	"github.com/MdEnamulHaque007/UPTOP-sub000/pipeline"
)

// Preferences captures the view settings a user expects to survive a
// restart.
type Preferences struct {
	Criteria     pipeline.Criteria `json:"criteria"`
	ItemsPerPage int               `json:"itemsPerPage"`
	ChartType    string            `json:"chartType"`
	Theme        string            `json:"theme"`
}

// DefaultPreferences is the out-of-the-box view.
func DefaultPreferences() Preferences {
	return Preferences{
		Criteria:     pipeline.NewCriteria(),
		ItemsPerPage: 10,
		ChartType:    "bar",
		Theme:        "light",
	}
}

// LoadPreferences reads persisted preferences, merging them over the
// defaults so fields absent from an older file keep their default value.
// A missing file is not an error; it yields the defaults.
func LoadPreferences(path string) (Preferences, error) {
	prefs := DefaultPreferences()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, errors.WrapFatal(err, "config", "LoadPreferences", "read preferences")
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		// A corrupt file falls back to defaults rather than blocking
		// startup; the caller decides whether to surface the error.
		return DefaultPreferences(), errors.WrapInvalid(err, "config", "LoadPreferences", "parse preferences")
	}
	if prefs.ItemsPerPage <= 0 {
		prefs.ItemsPerPage = DefaultPreferences().ItemsPerPage
	}
	return prefs, nil
}

// SavePreferences writes preferences atomically via a temp file and
// rename, so a crash mid-write never leaves a truncated file behind.
func SavePreferences(path string, prefs Preferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return errors.WrapFatal(err, "config", "SavePreferences", "encode preferences")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".prefs-*.json")
	if err != nil {
		return errors.WrapFatal(err, "config", "SavePreferences", "create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapFatal(err, "config", "SavePreferences", "write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapFatal(err, "config", "SavePreferences", "close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WrapFatal(err, "config", "SavePreferences", "replace preferences")
	}
	return nil
}
