package evaluation

import (
	"encoding/json"
	"os"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

// queryFile is the on-disk shape of a labeled-query file.
type queryFile struct {
	TestQueries []LabeledQuery `json:"test_queries"`
}

// LoadQueries reads labeled queries from a JSON file with a top-level
// "test_queries" array. Entries without relevance judgments load fine; the
// runner decides what to do with them.
func LoadQueries(path string) ([]LabeledQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFoundError("query file " + path)
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "reading query file", err)
	}

	var file queryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "parsing query file "+path, err)
	}

	queries := make([]LabeledQuery, 0, len(file.TestQueries))
	for _, q := range file.TestQueries {
		if q.Query == "" && len(q.RelevantDocIDs) == 0 {
			continue
		}
		queries = append(queries, q)
	}

	return queries, nil
}
