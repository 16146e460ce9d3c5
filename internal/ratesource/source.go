// Package ratesource supplies candidate lists to the comboboxes: an HTTP
// exchange-rate lookup with retries, a local file, or a fixed list.
package ratesource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/pkg/loader"
)

// ErrUnavailable wraps every failure to obtain candidates.
var ErrUnavailable = errors.New("rate source unavailable")

// Source fetches the full candidate list once per call. Callers own the
// refresh policy.
type Source interface {
	Fetch(ctx context.Context) ([]candidate.Candidate, error)
	Describe() string
}

// Settings selects and tunes a Source.
type Settings struct {
	// Location is a URL prefix (http or https) or a file path.
	Location string
	// Base is the currency rates are quoted against; URL sources only.
	Base    string
	Retries int
	Timeout time.Duration
}

// New builds a Source for s.Location.
func New(s Settings, log logr.Logger) (Source, error) {
	loc := strings.TrimSpace(s.Location)
	switch {
	case loc == "":
		return nil, errors.New("no rate source configured")
	case strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://"):
		if s.Base == "" {
			return nil, errors.New("a base currency is required for URL sources")
		}
		return NewHTTP(loc, s.Base,
			WithRetries(s.Retries),
			WithTimeout(s.Timeout),
			WithLogger(log),
		), nil
	default:
		return File{Path: loc}, nil
	}
}

// File reads candidates from a JSON, NDJSON, YAML or TOML file.
type File struct {
	Path string
}

func (f File) Fetch(ctx context.Context) ([]candidate.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, err := loader.LoadCandidatesFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return list, nil
}

func (f File) Describe() string { return "file " + f.Path }

// Static always returns the same candidates.
type Static []candidate.Candidate

func (s Static) Fetch(context.Context) ([]candidate.Candidate, error) {
	return candidate.Clone(s), nil
}

func (s Static) Describe() string { return fmt.Sprintf("%d built-in candidates", len(s)) }
