package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pbmd/forgescan/internal/cache"
	"github.com/pbmd/forgescan/internal/config"
	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/httpclient"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/pkg/pubmed"
	"github.com/pbmd/forgescan/pkg/repometa"
	"github.com/pbmd/forgescan/pkg/repometa/github"
	"github.com/pbmd/forgescan/pkg/repometa/gitlab"
	"github.com/pbmd/forgescan/pkg/swh"
)

// app holds what a command needs once configuration is resolved.
type app struct {
	logger *log.Logger
	cache  cache.Cache
	cfg    config.Config
}

func newLogger() *log.Logger {
	return logging.New(os.Stderr, logging.Level(verbose, quiet))
}

// setup resolves the configuration, opens the response cache and returns a
// context carrying the logger. Callers must Close the app.
func setup(cmd *cobra.Command) (context.Context, *app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}

	logger := newLogger()
	logger.Debug("configuration loaded", "cache", cfg.Cache.Backend, "workers", cfg.Workers, "pubmed_key", cfg.PubMed.APIKey != "")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return logging.WithLogger(ctx, logger), &app{cfg: cfg, cache: c, logger: logger}, nil
}

// Close releases the cache.
func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close cache", "err", err)
	}
}

func (a *app) httpOptions(namespace string) []httpclient.Option {
	return []httpclient.Option{
		httpclient.WithTimeout(a.cfg.HTTP.Timeout),
		httpclient.WithRetries(a.cfg.HTTP.Retries),
		httpclient.WithCache(a.cache, namespace+":", a.cfg.Cache.TTL),
	}
}

func (a *app) pubmed() *pubmed.Client {
	return pubmed.New(
		pubmed.WithAPIKey(a.cfg.PubMed.APIKey),
		pubmed.WithEmail(a.cfg.PubMed.Email),
		pubmed.WithHTTPOptions(a.httpOptions("pubmed")...),
	)
}

func (a *app) archive() *swh.Client {
	return swh.New(
		swh.WithToken(a.cfg.SWH.Token),
		swh.WithHTTPOptions(a.httpOptions("swh")...),
	)
}

// metadataRegistry registers a client for every forge of the catalog that
// has a metadata API, together with the forge's host aliases.
func (a *app) metadataRegistry(catalog *forges.Catalog) (*repometa.Registry, error) {
	registry := repometa.NewRegistry()

	for _, forge := range catalog.All() {
		if !forge.HasAPI() {
			continue
		}

		client, err := a.metadataClient(forge.API)
		if err != nil {
			return nil, fmt.Errorf("forge %s: %w", forge.Name, err)
		}

		if client.Host() != forge.Domain {
			return nil, fmt.Errorf("forge %s: api %s serves %s, not %s", forge.Name, forge.API, client.Host(), forge.Domain)
		}

		if err := registry.Register(client); err != nil {
			return nil, err
		}

		for _, alias := range forge.Aliases {
			if err := registry.RegisterAlias(alias, forge.Domain); err != nil {
				return nil, err
			}
		}
	}

	return registry, nil
}

func (a *app) metadataClient(api string) (repometa.Client, error) {
	switch api {
	case "github":
		return github.New(
			github.WithToken(a.cfg.GitHub.Token),
			github.WithHTTPOptions(a.httpOptions("github")...),
		), nil
	case "gitlab":
		return gitlab.New(
			gitlab.WithToken(a.cfg.GitLab.Token),
			gitlab.WithHTTPOptions(a.httpOptions("gitlab")...),
		), nil
	default:
		return nil, fmt.Errorf("unknown metadata api %q", api)
	}
}
