package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jimezsa/jobsweep/internal/models"
)

// ReadPostings reads a JSON array of postings from path.
func ReadPostings(path string) ([]models.Posting, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Posting{}, nil
	}

	var postings []models.Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, err
	}
	if postings == nil {
		return []models.Posting{}, nil
	}
	return postings, nil
}

// ReadPostingsAllowMissing reads postings and treats missing files as empty history.
func ReadPostingsAllowMissing(path string) ([]models.Posting, error) {
	postings, err := ReadPostings(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Posting{}, nil
		}
		return nil, err
	}
	return postings, nil
}

// WritePostings writes postings as pretty JSON.
func WritePostings(path string, postings []models.Posting) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if postings == nil {
		postings = []models.Posting{}
	}
	data, err := json.MarshalIndent(postings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
