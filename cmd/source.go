package cmd

import (
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/fxpick/internal/config"
	"github.com/oakwood-commons/fxpick/internal/ratesource"
	"github.com/oakwood-commons/fxpick/pkg/settings"
)

// sourceSettings merges the command-line source flags over the config.
// A file beats a URL within each layer; any flag beats the config.
func sourceSettings(params *settings.Run, cfg config.Config) ratesource.Settings {
	s := ratesource.Settings{
		Base:    cfg.Source.Base,
		Retries: cfg.Source.Retries,
		Timeout: cfg.Source.Timeout.Std(),
	}
	switch {
	case params.Source.File != "":
		s.Location = params.Source.File
	case params.Source.URL != "":
		s.Location = params.Source.URL
	case cfg.Source.File != "":
		s.Location = cfg.Source.File
	default:
		s.Location = cfg.Source.URL
	}
	if params.Source.Base != "" {
		s.Base = params.Source.Base
	}
	if params.Source.Retries > 0 {
		s.Retries = params.Source.Retries
	}
	if params.Source.Timeout > 0 {
		s.Timeout = params.Source.Timeout
	}
	return s
}

func resolveSource(params *settings.Run, cfg config.Config, lgr logr.Logger) (ratesource.Source, error) {
	return ratesource.New(sourceSettings(params, cfg), lgr)
}
