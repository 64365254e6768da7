package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tesh254/wikimd/internal/api"
	"github.com/tesh254/wikimd/internal/scraper"
	"github.com/tesh254/wikimd/internal/storage"
)

// scraperConfig overlays the configured values on scraper.DefaultConfig.
func scraperConfig() *scraper.Config {
	cfg := scraper.DefaultConfig()
	cfg.Verbose = viper.GetBool("verbose")
	if v := viper.GetString("user_agent"); v != "" {
		cfg.UserAgent = v
	}
	if v := viper.GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if viper.IsSet("request_delay") {
		cfg.RequestDelay = viper.GetDuration("request_delay")
	}
	if v := viper.GetString("api_url"); v != "" {
		cfg.APIURL = v
	}
	if v := viper.GetString("wiki_url"); v != "" {
		cfg.WikiURL = v
	}
	if v := viper.GetString("selector"); v != "" {
		cfg.ContentSelector = v
	}
	return cfg
}

func newParser() (*scraper.Parser, error) {
	engine, err := scraper.ParseEngine(viper.GetString("engine"))
	if err != nil {
		return nil, err
	}
	return scraper.NewParser(engine, viper.GetStringSlice("skip_tags"))
}

func openStorage() (*storage.Storage, error) {
	st, err := storage.NewStorage(viper.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return st, nil
}

// newAPI wires the scraper, parser and, unless caching is disabled, the
// storage. The returned func releases the storage.
func newAPI() (*api.API, func(), error) {
	parser, err := newParser()
	if err != nil {
		return nil, nil, err
	}
	wiki := scraper.New(scraperConfig())

	if viper.GetBool("no_cache") {
		return api.NewAPI(wiki, parser, nil), func() {}, nil
	}
	st, err := openStorage()
	if err != nil {
		return nil, nil, err
	}
	return api.NewAPI(wiki, parser, st), func() { st.Close() }, nil
}
