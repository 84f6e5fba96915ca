// api/audit/repository.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Repository interface {
	LogDecision(ctx context.Context, log DecisionLog) error
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
}

// NewElasticsearchRepository creates a new repository with a given Elasticsearch client URL.
func NewElasticsearchRepository(esURL string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient}, nil
}

// LogDecision indexes a governance decision in Elasticsearch.
func (r *ElasticsearchRepository) LogDecision(ctx context.Context, log DecisionLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      "governance-decisions",
		DocumentID: fmt.Sprintf("%d-%s", log.Timestamp.UnixNano(), log.RequestID),
		Body:       strings.NewReader(string(data)),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to index decision log: %s", res.Status())
	}
	return nil
}

// MemoryRepository keeps decision logs in memory; used in tests and when no
// Elasticsearch endpoint is configured.
type MemoryRepository struct {
	mu   sync.Mutex
	logs []DecisionLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) LogDecision(_ context.Context, log DecisionLog) error {
	r.mu.Lock()
	r.logs = append(r.logs, log)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Logs() []DecisionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DecisionLog, len(r.logs))
	copy(out, r.logs)
	return out
}
