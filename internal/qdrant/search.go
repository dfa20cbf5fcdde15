package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// DenseSearch performs a dense vector search.
func (c *Client) DenseSearch(ctx context.Context, collection string, req SearchRequest) ([]SearchResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("dense vector is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	limit := req.Limit
	if limit == 0 {
		limit = 20
	}

	queryPoints := &qdrant.QueryPoints{
		CollectionName: c.collectionName(collection),
		Query:          qdrant.NewQueryDense(req.Vector),
		Using:          qdrant.PtrOf("dense"),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(req.WithPayload),
	}

	if req.Filter != nil {
		queryPoints.Filter = buildSearchFilter(req.Filter)
	}

	if req.ScoreThreshold != nil {
		queryPoints.ScoreThreshold = req.ScoreThreshold
	}

	results, err := c.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("dense search failed: %w", err)
	}

	return scoredPointsToResults(results), nil
}

// ScrollMatching pages through every point matching the filter, up to limit
// (0 = unbounded). The keyword search strategy uses this with a TextContains
// filter to gather candidates for client-side term scoring.
func (c *Client) ScrollMatching(ctx context.Context, collection string, filter *SearchFilter, limit int) ([]SearchResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var results []SearchResult
	var offset *qdrant.PointId
	const pageSize = 100

	for {
		scrollReq := &qdrant.ScrollPoints{
			CollectionName: c.collectionName(collection),
			Filter:         buildSearchFilter(filter),
			Limit:          qdrant.PtrOf(uint32(pageSize)),
			WithPayload:    qdrant.NewWithPayload(true),
			Offset:         offset,
		}

		points, err := c.client.Scroll(ctx, scrollReq)
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}

		for _, p := range points {
			results = append(results, SearchResult{
				ID:      pointIDString(p.Id),
				Payload: extractPayload(p.Payload),
			})
			if limit > 0 && len(results) >= limit {
				return results, nil
			}
		}

		if len(points) < pageSize {
			break
		}
		offset = points[len(points)-1].Id
	}

	return results, nil
}

// buildSearchFilter builds a Qdrant filter from SearchFilter.
func buildSearchFilter(f *SearchFilter) *qdrant.Filter {
	if f == nil {
		return nil
	}

	var conditions []*qdrant.Condition

	if len(f.Sources) > 0 {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: "source",
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keywords{
							Keywords: &qdrant.RepeatedStrings{
								Strings: f.Sources,
							},
						},
					},
				},
			},
		})
	}

	if f.Section != "" {
		conditions = append(conditions, keywordCondition("section", f.Section))
	}

	if f.DocID != "" {
		conditions = append(conditions, keywordCondition("doc_id", f.DocID))
	}

	if f.TextContains != "" {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: "text",
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Text{
							Text: f.TextContains,
						},
					},
				},
			},
		})
	}

	if len(conditions) == 0 {
		return nil
	}

	return &qdrant.Filter{Must: conditions}
}

// keywordCondition builds an exact keyword match condition.
func keywordCondition(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{
						Keyword: value,
					},
				},
			},
		},
	}
}

// scoredPointsToResults converts Qdrant scored points to SearchResults.
func scoredPointsToResults(points []*qdrant.ScoredPoint) []SearchResult {
	results := make([]SearchResult, 0, len(points))
	for _, p := range points {
		results = append(results, SearchResult{
			ID:      pointIDString(p.Id),
			Score:   p.Score,
			Payload: extractPayload(p.Payload),
		})
	}
	return results
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	}
	return ""
}

// extractPayload extracts PointPayload from a Qdrant payload map.
func extractPayload(payload map[string]*qdrant.Value) PointPayload {
	result := PointPayload{
		DocID:    getStringValue(payload, "doc_id"),
		ChunkID:  getIntValue(payload, "chunk_id"),
		Title:    getStringValue(payload, "title"),
		Source:   getStringValue(payload, "source"),
		Section:  getStringValue(payload, "section"),
		Date:     getStringValue(payload, "date"),
		Text:     getStringValue(payload, "text"),
		Page:     getIntValue(payload, "page"),
		Filename: getStringValue(payload, "filename"),
	}

	if v := getStringValue(payload, "indexed_at"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			result.IndexedAt = t
		}
	}

	return result
}

func getStringValue(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if sv, ok := v.Kind.(*qdrant.Value_StringValue); ok {
			return sv.StringValue
		}
	}
	return ""
}

func getIntValue(payload map[string]*qdrant.Value, key string) int {
	if v, ok := payload[key]; ok {
		if iv, ok := v.Kind.(*qdrant.Value_IntegerValue); ok {
			return int(iv.IntegerValue)
		}
	}
	return 0
}
