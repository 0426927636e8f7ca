// Package sources describes which sitemap feeds a feed and how its channel reads.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/samvad-hq/rssfeed/internal/domain"
	"gopkg.in/yaml.v3"
)

// Source is one sitemap-backed feed.
type Source struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	SitemapURL     string         `json:"sitemap_url" yaml:"sitemap_url"`
	PostURLPattern string         `json:"post_url_pattern" yaml:"post_url_pattern"`
	Channel        domain.Channel `json:"channel" yaml:"channel"`
	Config         map[string]any `json:"config" yaml:"config"`

	pattern *regexp.Regexp
}

// MatchesPost reports whether u is a post URL for this source.
func (s Source) MatchesPost(u string) bool {
	if s.pattern == nil {
		return false
	}
	return s.pattern.MatchString(u)
}

const DefaultSourceID = "prologue"

// Default returns the built-in Prologue source.
func Default() Source {
	src, _ := compile(Source{
		ID:             DefaultSourceID,
		Name:           "Prologue",
		SitemapURL:     "https://prologue.rememberapp.co.kr/sitemap.xml",
		PostURLPattern: `^https://prologue\.rememberapp\.co\.kr/\d+$`,
		Channel: domain.Channel{
			Title:       "프롤로그",
			Link:        "https://prologue.rememberapp.co.kr",
			Description: "성공 서막을 여는 영감과 인사이트 프로페셔널(Pro)들의 이야기(logue)를 전합니다.",
		},
		Config: map[string]any{},
	})
	return src
}

type fileRegistry struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry holds the sources that can be served.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry validates and indexes the given sources; duplicate ids are rejected.
func NewRegistry(srcs ...Source) (*Registry, error) {
	reg := &Registry{sources: make(map[string]Source, len(srcs))}
	for i, s := range srcs {
		if err := reg.add(s, false); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
	}
	return reg, nil
}

func (r *Registry) add(s Source, replace bool) error {
	s = sanitizeSource(s)
	if err := validateSource(s); err != nil {
		return err
	}
	compiled, err := compile(s)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[compiled.ID]; exists && !replace {
		return fmt.Errorf("duplicate source id %q", compiled.ID)
	}
	r.sources[compiled.ID] = compiled
	return nil
}

// LoadRegistry returns the built-in default source plus whatever the optional
// file at path declares. File entries may override the default by id.
func LoadRegistry(path string) (*Registry, error) {
	reg, err := NewRegistry(Default())
	if err != nil {
		return nil, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return reg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	seen := make(map[string]struct{}, len(fileReg.Sources))
	for i, s := range fileReg.Sources {
		id := strings.TrimSpace(s.ID)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate source id %q", id)
		}
		seen[id] = struct{}{}
		if err := reg.add(s, true); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
	}
	return reg, nil
}

func parseRegistry(data []byte, ext string) (fileRegistry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg fileRegistry
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return fileRegistry{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitizeSource(s Source) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.SitemapURL = strings.TrimSpace(s.SitemapURL)
	s.PostURLPattern = strings.TrimSpace(s.PostURLPattern)
	s.Channel.Title = strings.TrimSpace(s.Channel.Title)
	s.Channel.Link = strings.TrimSpace(s.Channel.Link)
	s.Channel.Description = strings.TrimSpace(s.Channel.Description)
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.SitemapURL == "" {
		return fmt.Errorf("sitemap_url is required for source %q", s.ID)
	}
	if s.PostURLPattern == "" {
		return fmt.Errorf("post_url_pattern is required for source %q", s.ID)
	}
	if s.Channel.Title == "" || s.Channel.Link == "" {
		return fmt.Errorf("channel title and link are required for source %q", s.ID)
	}
	return nil
}

func compile(s Source) (Source, error) {
	re, err := regexp.Compile(s.PostURLPattern)
	if err != nil {
		return Source{}, fmt.Errorf("compile post_url_pattern for source %q: %w", s.ID, err)
	}
	s.pattern = re
	return s, nil
}

// ByID returns the source with the given id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[id]
	return s, ok
}

// All returns every source sorted by id.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the sorted source ids.
func (r *Registry) IDs() []string {
	all := r.All()
	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
	}
	return ids
}
