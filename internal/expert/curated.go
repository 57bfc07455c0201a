package expert

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scholarly/insights-service/internal/domain"
)

//go:embed curated.yaml
var curatedYAML []byte

// curatedFile is the on-disk schema of the curated fallback dataset.
type curatedFile struct {
	Version int           `yaml:"version"`
	Items   []curatedItem `yaml:"items"`
}

type curatedItem struct {
	ID             string  `yaml:"id"`
	Title          string  `yaml:"title"`
	Description    string  `yaml:"description"`
	Author         string  `yaml:"author"`
	Date           string  `yaml:"date"`
	Source         string  `yaml:"source"`
	URL            string  `yaml:"url"`
	Kind           string  `yaml:"kind"`
	RelevanceScore float64 `yaml:"relevance_score"`
}

// LoadCurated decodes the curated fallback dataset compiled into the binary.
func LoadCurated() ([]domain.ExpertContent, error) {
	return parseCurated(curatedYAML)
}

// LoadCuratedFile decodes a curated dataset from path, letting deployments
// override the embedded one without rebuilding.
func LoadCuratedFile(path string) ([]domain.ExpertContent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading curated dataset: %w", err)
	}
	return parseCurated(raw)
}

func parseCurated(raw []byte) ([]domain.ExpertContent, error) {
	var file curatedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decoding curated dataset: %w", err)
	}

	items := make([]domain.ExpertContent, 0, len(file.Items))
	for i, item := range file.Items {
		content := domain.ExpertContent{
			ID:             item.ID,
			Title:          item.Title,
			Description:    item.Description,
			Author:         item.Author,
			Date:           item.Date,
			Source:         item.Source,
			URL:            item.URL,
			Kind:           domain.ResultKind(item.Kind),
			RelevanceScore: item.RelevanceScore,
		}
		if err := domain.ValidateExpertContent(&content); err != nil {
			return nil, fmt.Errorf("curated item %d (%s): %w", i, item.ID, err)
		}
		items = append(items, content)
	}
	return items, nil
}
