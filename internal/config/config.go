// Package config reads repository settings from an INI file.
package config

import (
	"fmt"
	"strings"

	"github.com/ralt/pkginfo/internal/models"
	"gopkg.in/ini.v1"
)

// SectionName is the INI section holding repository settings
const SectionName = "repository"

// Load reads path and overwrites the fields of cfg whose keys are present
// in the [repository] section. Absent keys leave cfg untouched.
func Load(path string, cfg *models.RepositoryConfig) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if !file.HasSection(SectionName) {
		return fmt.Errorf("config %s has no [%s] section", path, SectionName)
	}
	section := file.Section(SectionName)

	strs := map[string]*string{
		"name":           &cfg.RepoName,
		"input-dir":      &cfg.InputDir,
		"output-dir":     &cfg.OutputDir,
		"gpg-key":        &cfg.GPGKeyPath,
		"gpg-passphrase": &cfg.GPGPassphrase,
	}
	for key, dst := range strs {
		if section.HasKey(key) {
			*dst = section.Key(key).String()
		}
	}

	if section.HasKey("arch") {
		cfg.Arches = splitList(section.Key("arch").String())
	}

	if section.HasKey("concurrency") {
		n, err := section.Key("concurrency").Int()
		if err != nil {
			return fmt.Errorf("invalid concurrency in %s: %w", path, err)
		}
		if n < 0 {
			return fmt.Errorf("invalid concurrency in %s: %d", path, n)
		}
		cfg.Concurrency = n
	}

	bools := map[string]*bool{
		"strict":      &cfg.Strict,
		"incremental": &cfg.Incremental,
	}
	for key, dst := range bools {
		if !section.HasKey(key) {
			continue
		}
		v, err := section.Key(key).Bool()
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", key, path, err)
		}
		*dst = v
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
