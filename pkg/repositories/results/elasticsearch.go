package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

// ElasticsearchConfig holds configuration for the Elasticsearch archive
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
}

// DefaultElasticsearchConfig returns a default configuration
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "pitboss",
	}
}

// ElasticsearchRepository implements Repository using Elasticsearch
type ElasticsearchRepository struct {
	client *elasticsearch.Client
	index  string
}

// recordDocument is the wire form of an archive entry
type recordDocument struct {
	RecordID    string    `json:"record_id"`
	UserID      string    `json:"user_id"`
	GuildID     string    `json:"guild_id"`
	Game        string    `json:"game"`
	Outcome     string    `json:"outcome"`
	MoneyDelta  int64     `json:"money_delta"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewElasticsearchRepository creates a new Elasticsearch archive
func NewElasticsearchRepository(config *ElasticsearchConfig) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	if config.IndexPrefix == "" {
		config.IndexPrefix = "pitboss"
	}

	repo := &ElasticsearchRepository{
		client: client,
		index:  config.IndexPrefix + "_rounds",
	}

	if err := repo.initIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("error initializing index: %w", err)
	}
	return repo, nil
}

// initIndex creates the rounds index if it doesn't exist
func (r *ElasticsearchRepository) initIndex(ctx context.Context) error {
	res, err := r.client.Indices.Exists([]string{r.index})
	if err != nil {
		return fmt.Errorf("error checking if index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != 404 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"record_id": { "type": "keyword" },
				"user_id": { "type": "keyword" },
				"guild_id": { "type": "keyword" },
				"game": { "type": "keyword" },
				"outcome": { "type": "keyword" },
				"money_delta": { "type": "long" },
				"completed_at": { "type": "date" }
			}
		}
	}`

	req := esapi.IndicesCreateRequest{
		Index: r.index,
		Body:  bytes.NewReader([]byte(mapping)),
	}

	createRes, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error creating index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("error creating index: %s", createRes.String())
	}
	return nil
}

// SaveRecord stores one archive entry
func (r *ElasticsearchRepository) SaveRecord(ctx context.Context, record *entities.RoundRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	doc := recordDocument{
		RecordID:    record.ID,
		UserID:      record.UserID,
		GuildID:     record.GuildID,
		Game:        string(record.Game),
		Outcome:     record.Outcome,
		MoneyDelta:  record.MoneyDelta,
		CompletedAt: record.CompletedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: record.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error indexing record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing record: %s", res.String())
	}
	return nil
}

// GetUserRecords retrieves the most recent records for a user
func (r *ElasticsearchRepository) GetUserRecords(ctx context.Context, userID string, limit int) ([]*entities.RoundRecord, error) {
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"user_id": userID},
		},
		"sort": []map[string]any{
			{"completed_at": map[string]any{"order": "desc"}},
		},
		"size": limit,
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("error marshaling query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("error searching records: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching records: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source recordDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}

	records := make([]*entities.RoundRecord, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		doc := hit.Source
		records = append(records, &entities.RoundRecord{
			ID:          doc.RecordID,
			UserID:      doc.UserID,
			GuildID:     doc.GuildID,
			Game:        entities.GameKind(doc.Game),
			Outcome:     doc.Outcome,
			MoneyDelta:  doc.MoneyDelta,
			CompletedAt: doc.CompletedAt,
		})
	}
	return records, nil
}

// Close is a no-op; the underlying HTTP client needs no explicit shutdown
func (r *ElasticsearchRepository) Close() error {
	return nil
}
