package timetable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultSourceNames are the documents loaded when no other list is configured,
// in priority order.
var DefaultSourceNames = []string{"timetable_updated.json", "timetable_custom.json"}

// maxDocumentSize bounds the body read from any single source.
const maxDocumentSize = 16 << 20

// ErrSourceUnavailable is wrapped by source errors caused by a missing or
// unreachable document.
var ErrSourceUnavailable = errors.New("timetable: source unavailable")

// Source produces one timetable document.
type Source interface {
	Name() string
	Load(ctx context.Context) (Timetable, error)
}

// FileSource reads a JSON document from a file system.
type FileSource struct {
	fsys fs.FS
	name string
}

// NewFileSource returns a source reading name from fsys.
func NewFileSource(fsys fs.FS, name string) *FileSource {
	return &FileSource{fsys: fsys, name: name}
}

// DirSources returns one FileSource per name rooted at dir.
func DirSources(dir string, names ...string) []Source {
	fsys := os.DirFS(dir)
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, NewFileSource(fsys, name))
	}
	return sources
}

func (s *FileSource) Name() string {
	return "file:" + s.name
}

func (s *FileSource) Load(ctx context.Context) (Timetable, error) {
	if err := ctx.Err(); err != nil {
		return Timetable{}, err
	}
	data, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Timetable{}, fmt.Errorf("%w: %s", ErrSourceUnavailable, s.name)
		}
		return Timetable{}, fmt.Errorf("timetable: read %s: %w", s.name, err)
	}
	return Decode(data)
}

// HTTPSource fetches a JSON document from <base>/data/<name>.
type HTTPSource struct {
	client *http.Client
	url    string
}

// NewHTTPSource returns a source fetching name below baseURL. A nil client
// falls back to one with the given timeout.
func NewHTTPSource(client *http.Client, baseURL, name string, timeout time.Duration) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	target, err := url.JoinPath(strings.TrimRight(baseURL, "/"), "data", name)
	if err != nil {
		target = strings.TrimRight(baseURL, "/") + "/data/" + name
	}
	return &HTTPSource{client: client, url: target}
}

// HTTPSources returns one HTTPSource per name sharing a client.
func HTTPSources(baseURL string, timeout time.Duration, names ...string) []Source {
	client := &http.Client{Timeout: timeout}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, NewHTTPSource(client, baseURL, name, timeout))
	}
	return sources
}

func (s *HTTPSource) Name() string {
	return s.url
}

func (s *HTTPSource) Load(ctx context.Context) (Timetable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Timetable{}, fmt.Errorf("timetable: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return Timetable{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Timetable{}, fmt.Errorf("%w: %s returned %d", ErrSourceUnavailable, s.url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return Timetable{}, fmt.Errorf("timetable: read %s: %w", s.url, err)
	}
	return Decode(data)
}
