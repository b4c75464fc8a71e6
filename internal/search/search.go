// Package search answers artwork search queries, through Elasticsearch when
// a cluster is configured and through the database otherwise.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/craftorigin/storefront/internal/config"
	"github.com/craftorigin/storefront/internal/logging"
	"github.com/craftorigin/storefront/internal/models"
)

type Searcher struct {
	ES    *elasticsearch.Client
	DB    *gorm.DB
	Index string
}

// NewClient connects to the configured cluster, or returns nil when no
// ES_URL is set.
func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	if cfg.ES_URL == "" {
		return nil, nil
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.Status())
	}
	return client, nil
}

// Search returns artworks matching query, or every artwork when the query
// is empty.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.Artwork, error) {
	if query == "" {
		var all []models.Artwork
		if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&all).Error; err != nil {
			return nil, err
		}
		return all, nil
	}
	if s.ES != nil {
		return s.searchES(ctx, query)
	}
	return s.searchDB(ctx, query)
}

func (s *Searcher) searchDB(ctx context.Context, query string) ([]models.Artwork, error) {
	pattern := "%" + query + "%"
	var found []models.Artwork
	err := s.DB.WithContext(ctx).
		Where("title LIKE ? OR description LIKE ? OR artist_name LIKE ?", pattern, pattern, pattern).
		Order("created_at desc").
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Searcher) searchES(ctx context.Context, query string) ([]models.Artwork, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description", "artist_name"},
				"fuzziness": "AUTO",
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Artwork `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	artworks := make([]models.Artwork, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		artworks[i] = hit.Source
	}
	return artworks, nil
}

// IndexArtwork mirrors a new artwork into the search index; without a
// cluster this is a no-op.
func (s *Searcher) IndexArtwork(ctx context.Context, a *models.Artwork) {
	if s.ES == nil {
		return
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(raw),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(a.ID.String()),
	)
	if err != nil {
		logging.FromContext(ctx).Error("index_artwork_error", "error", err)
		return
	}
	res.Body.Close()
}
