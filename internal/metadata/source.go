package metadata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"ETFBoard/internal/model"
)

// Lookup maps a security code to its static metadata.
type Lookup map[string]model.Metadata

// Source loads the static metadata lookup.
type Source interface {
	Load(ctx context.Context) (Lookup, error)
}

// FileSource reads the lookup from a JSON file. A missing file yields an
// empty lookup.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

func (s *FileSource) Load(_ context.Context) (Lookup, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Lookup{}, nil
		}
		return nil, errors.Wrap(err, "read metadata")
	}
	return decode(data)
}

// HTTPSource fetches the lookup from a URL. A 404 yields an empty lookup.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *HTTPSource) Load(ctx context.Context) (Lookup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build metadata request")
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch metadata")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Lookup{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch metadata: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read metadata")
	}
	return decode(data)
}

// StaticSource serves a fixed lookup.
type StaticSource Lookup

func (s StaticSource) Load(context.Context) (Lookup, error) { return Lookup(s), nil }

func decode(data []byte) (Lookup, error) {
	lookup := Lookup{}
	if err := json.Unmarshal(data, &lookup); err != nil {
		return nil, errors.Wrap(err, "decode metadata")
	}
	return lookup, nil
}
