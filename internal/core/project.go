package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

const (
	projectDir        = "plexus"
	configDir         = ".config"
	projectConfigFile = "project-config.json"
	localEnvFile      = "local-env-info.json"
	teamEnvFile       = "team-provider-info.json"
)

var (
	// ErrNotInitialised is returned by commands that need an initialised project.
	ErrNotInitialised = errors.New("no plexus project found, run plexus init first")

	// ErrAlreadyInitialised is returned by init when a project exists.
	ErrAlreadyInitialised = errors.New("a plexus project is already initialised")

	projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
	envNamePattern     = regexp.MustCompile(`^[a-z]{2,10}$`)
)

// ProjectConfig is stored in plexus/.config/project-config.json.
type ProjectConfig struct {
	ProjectName  string     `json:"projectName"`
	Version      string     `json:"version"`
	Providers    []string   `json:"providers"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastPushTime *time.Time `json:"lastPushTime,omitempty"`
}

// Environment is one entry of plexus/team-provider-info.json.
type Environment struct {
	Providers    []string   `json:"providers"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastPushTime *time.Time `json:"lastPushTime,omitempty"`
}

type localEnvInfo struct {
	EnvName string `json:"envName"`
}

// Project reads and writes the project files under a project root.
type Project struct {
	root string
}

// OpenProject returns the project rooted at root. Nothing is read until needed.
func OpenProject(root string) *Project {
	return &Project{root: root}
}

func (p *Project) path(elem ...string) string {
	return filepath.Join(append([]string{p.root, projectDir}, elem...)...)
}

// Initialised reports whether the project config exists.
func (p *Project) Initialised() bool {
	_, err := os.Stat(p.path(configDir, projectConfigFile))
	return err == nil
}

// Config loads the project config.
func (p *Project) Config() (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := readJSON(p.path(configDir, projectConfigFile), &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInitialised
		}
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the project config.
func (p *Project) SaveConfig(cfg *ProjectConfig) error {
	return writeJSON(p.path(configDir, projectConfigFile), cfg)
}

// Environments loads every environment of the project.
func (p *Project) Environments() (map[string]Environment, error) {
	envs := map[string]Environment{}
	if err := readJSON(p.path(teamEnvFile), &envs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return envs, nil
}

// SaveEnvironments writes every environment of the project.
func (p *Project) SaveEnvironments(envs map[string]Environment) error {
	return writeJSON(p.path(teamEnvFile), envs)
}

// CurrentEnv returns the checked-out environment name, or "" when none is set.
func (p *Project) CurrentEnv() (string, error) {
	var info localEnvInfo
	if err := readJSON(p.path(configDir, localEnvFile), &info); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return info.EnvName, nil
}

// SetCurrentEnv checks out name.
func (p *Project) SetCurrentEnv(name string) error {
	return writeJSON(p.path(configDir, localEnvFile), localEnvInfo{EnvName: name})
}

// EnvNames returns the environment names sorted.
func EnvNames(envs map[string]Environment) []string {
	names := make([]string, 0, len(envs))
	for name := range envs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func validateProjectName(name string) error {
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("invalid project name %q: use 3 to 20 alphanumeric characters", name)
	}
	return nil
}

func validateEnvName(name string) error {
	if !envNamePattern.MatchString(name) {
		return fmt.Errorf("invalid environment name %q: use 2 to 10 lowercase letters", name)
	}
	return nil
}

// defaultProjectName derives a valid name from the project directory.
func defaultProjectName(root string) string {
	name := strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			return r
		}
		return -1
	}, filepath.Base(root))
	if len(name) > 20 {
		name = name[:20]
	}
	if len(name) < 3 {
		return "plexusproject"
	}
	return name
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) // #nosec G304 -- project files under the project root
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
