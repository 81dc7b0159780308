package classify

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/logger"
	"github.com/robgonnella/aegis/internal/resolve"
	"gopkg.in/yaml.v3"
)

// MinTrainingSamples fewest labeled devices a model is trained from
const MinTrainingSamples = 10

// Model a learned mapping from hardware vendor prefix to category. Each
// prefix maps to the category most often recorded for devices carrying it.
type Model struct {
	Prefixes  map[string]Category `yaml:"prefixes"`
	Samples   int                 `yaml:"samples"`
	TrainedAt time.Time           `yaml:"trainedAt"`
}

func prefix(mac string) string {
	mac = strings.ToLower(mac)

	if len(mac) < 8 {
		return ""
	}

	return mac[:8]
}

// Train builds a Model from stored devices. Devices without a category or
// with a randomized address are not used.
func Train(devices []*device.Device) (*Model, error) {
	votes := map[string]map[Category]int{}
	samples := 0

	for _, d := range devices {
		if d == nil || d.Type == "" || Category(d.Type) == Unknown {
			continue
		}

		if resolve.IsLocallyAdministered(d.MAC) {
			continue
		}

		p := prefix(d.MAC)

		if p == "" {
			continue
		}

		if votes[p] == nil {
			votes[p] = map[Category]int{}
		}

		votes[p][Category(d.Type)]++
		samples++
	}

	if samples < MinTrainingSamples {
		return nil, fmt.Errorf(
			"%w: have %d need %d",
			exception.ErrNotEnoughSamples,
			samples,
			MinTrainingSamples,
		)
	}

	model := &Model{
		Prefixes:  map[string]Category{},
		Samples:   samples,
		TrainedAt: time.Now(),
	}

	for p, counts := range votes {
		model.Prefixes[p] = majority(counts)
	}

	return model, nil
}

// ties go to the alphabetically first category so training is repeatable
func majority(counts map[Category]int) Category {
	categories := make([]Category, 0, len(counts))

	for c := range counts {
		categories = append(categories, c)
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i] < categories[j]
	})

	best := Unknown
	bestCount := 0

	for _, c := range categories {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}

	return best
}

// Predict returns the learned category for f if the model knows its prefix
func (m *Model) Predict(f Features) (Category, bool) {
	if m == nil || m.Prefixes == nil || resolve.IsLocallyAdministered(f.MAC) {
		return Unknown, false
	}

	category, ok := m.Prefixes[prefix(f.MAC)]

	if !ok || category == Unknown {
		return Unknown, false
	}

	return category, true
}

// SaveModel writes the model to path as yaml
func SaveModel(path string, m *Model) error {
	data, err := yaml.Marshal(m)

	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadModel reads a model previously written by SaveModel
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	var m Model

	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}

// ModelClassifier answers from a learned model and falls back to another
// classifier when the model has no answer
type ModelClassifier struct {
	model    Predictor
	fallback Classifier
}

// NewModelClassifier returns a new instance of ModelClassifier
func NewModelClassifier(model Predictor, fallback Classifier) *ModelClassifier {
	return &ModelClassifier{
		model:    model,
		fallback: fallback,
	}
}

// Classify implements Classifier. Any failure inside the model yields the
// fallback's answer.
func (c *ModelClassifier) Classify(f Features) (category Category) {
	defer func() {
		if rec := recover(); rec != nil {
			log := logger.New()
			log.Warn().Str("panic", fmt.Sprint(rec)).Msg("model prediction failed, using fallback")
			category = c.fallback.Classify(f)
		}
	}()

	if predicted, ok := c.model.Predict(f); ok {
		return predicted
	}

	return c.fallback.Classify(f)
}

// LoadClassifier returns a ModelClassifier when a model file can be read
// and the rule classifier otherwise
func LoadClassifier(path string) Classifier {
	rules := NewRuleClassifier()

	if path == "" {
		return rules
	}

	model, err := LoadModel(path)

	if err != nil {
		log := logger.New()
		log.Debug().Err(err).Str("path", path).Msg("no classifier model, using rules")
		return rules
	}

	return NewModelClassifier(model, rules)
}
