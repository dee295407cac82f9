package sources

import (
	_ "embed"
	"fmt"
	"log/slog"

	"newsmesh/internal/crawl"
	"newsmesh/internal/crawl/fetcher"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultRegistryYAML []byte

// entryConfig is one YAML-declared source entry, grounded on the teacher's
// category-keyword tables being data rather than code; here the whole
// source list is lifted to data so adding an upstream doesn't need a
// rebuild.
type entryConfig struct {
	Type    string `yaml:"type"`
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Limit   int    `yaml:"limit"`
	Item    string `yaml:"item"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Summary string `yaml:"summary"`
}

type registryFile struct {
	Sources []entryConfig `yaml:"sources"`
}

// Build parses a source-registry YAML document and constructs one
// crawl.Source adapter per entry. feed handles the "hn" and "rss" entries;
// scraper handles "htmlindex" entries and should be built with
// fetcher.Config.Profile set to "scraper", since scraping an HTML index
// page warrants a much more conservative circuit breaker than polling a
// feed endpoint. An entry with an unknown type or invalid config is
// skipped with a warning rather than aborting the whole registry.
func Build(raw []byte, feed *fetcher.Fetcher, scraper *fetcher.Fetcher, logger *slog.Logger) ([]crawl.Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("sources: invalid registry yaml: %w", err)
	}

	result := make([]crawl.Source, 0, len(file.Sources))
	for _, e := range file.Sources {
		src, err := buildOne(e, feed, scraper, logger)
		if err != nil {
			logger.Warn("skipping source registry entry", "name", e.Name, "type", e.Type, "error", err)
			continue
		}
		result = append(result, src)
	}
	return result, nil
}

// DefaultRegistry builds the crawl.Source list from the module's embedded
// default source list.
func DefaultRegistry(feed *fetcher.Fetcher, scraper *fetcher.Fetcher, logger *slog.Logger) ([]crawl.Source, error) {
	return Build(defaultRegistryYAML, feed, scraper, logger)
}

func buildOne(e entryConfig, feed *fetcher.Fetcher, scraper *fetcher.Fetcher, logger *slog.Logger) (crawl.Source, error) {
	switch e.Type {
	case "hn":
		return NewHackerNewsSource(e.Limit, feed, logger), nil
	case "rss":
		if e.Name == "" || e.URL == "" {
			return nil, fmt.Errorf("rss source requires name and url")
		}
		return NewRSSSource(e.Name, e.URL, feed, logger), nil
	case "htmlindex":
		if e.Name == "" || e.URL == "" || e.Item == "" {
			return nil, fmt.Errorf("htmlindex source requires name, url, and item selector")
		}
		sel := IndexSelectors{Item: e.Item, Title: e.Title, Link: e.Link, Summary: e.Summary}
		return NewHTMLIndexSource(e.Name, e.URL, sel, scraper, logger)
	default:
		return nil, fmt.Errorf("unknown source type %q", e.Type)
	}
}
