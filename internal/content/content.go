// Package content holds the text shown on the portfolio page. The default
// copy is embedded; a YAML file on disk can replace it.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embedded []byte

type Site struct {
	Owner     string    `yaml:"owner"`
	ShortName string    `yaml:"short_name"`
	Badge     string    `yaml:"badge"`
	Greeting  string    `yaml:"greeting"`
	About     string    `yaml:"about"`
	Roles     []string  `yaml:"roles"`
	Nav       []NavItem `yaml:"nav"`
	Social    []Link    `yaml:"social"`
	TechStack []Tech    `yaml:"tech_stack"`
	Projects  []Project `yaml:"projects"`
}

type NavItem struct {
	Name string `yaml:"name"`
	Href string `yaml:"href"` // section id
}

type Link struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Tech struct {
	Name        string `yaml:"name"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"` // tailwind gradient stops
	Description string `yaml:"description"`
}

type Project struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	GithubURL    string   `yaml:"github_url"`
	Technologies []string `yaml:"technologies"`
	ImageURL     string   `yaml:"image_url,omitempty"`
}

// Load returns the embedded site content.
func Load() (*Site, error) {
	return Parse(embedded)
}

// LoadFile reads site content from path. An empty path means the embedded copy.
func LoadFile(path string) (*Site, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Site) validate() error {
	var errs []error
	if len(s.Roles) == 0 {
		errs = append(errs, errors.New("content: at least one role is required"))
	}
	if len(s.TechStack) == 0 {
		errs = append(errs, errors.New("content: at least one tech_stack entry is required"))
	}
	return errors.Join(errs...)
}
