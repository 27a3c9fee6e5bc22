// Package catalog ingests authored scenario definitions and serves the
// public, cache-fronted catalog read path.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/repository"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ScenarioFile is the YAML structure of an authored scenario document.
type ScenarioFile struct {
	ID          string            `yaml:"id" json:"id"`
	Mode        string            `yaml:"mode" json:"mode"`
	Status      string            `yaml:"status,omitempty" json:"status,omitempty"`
	Title       map[string]string `yaml:"title" json:"title"`
	Description map[string]string `yaml:"description,omitempty" json:"description,omitempty"`
	Tasks       []TaskFile        `yaml:"tasks" json:"tasks"`
	PBL         *PBLFile          `yaml:"pbl,omitempty" json:"pbl,omitempty"`
	Assessment  *AssessmentFile   `yaml:"assessment,omitempty" json:"assessment,omitempty"`
	Discovery   *DiscoveryFile    `yaml:"discovery,omitempty" json:"discovery,omitempty"`
}

// TaskFile is one task template within a scenario document.
type TaskFile struct {
	ID           string            `yaml:"id" json:"id"`
	Type         string            `yaml:"type,omitempty" json:"type,omitempty"`
	Title        map[string]string `yaml:"title" json:"title"`
	Instructions map[string]string `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	MaxScore     float64           `yaml:"maxScore,omitempty" json:"maxScore,omitempty"`
	Domains      []string          `yaml:"domains,omitempty" json:"domains,omitempty"`
}

// PBLFile is the problem-based learning payload.
type PBLFile struct {
	KSAMapping map[string][]string `yaml:"ksaMapping,omitempty" json:"ksaMapping,omitempty"`
}

// AssessmentFile is the timed assessment payload.
type AssessmentFile struct {
	PassingScore     float64 `yaml:"passingScore,omitempty" json:"passingScore,omitempty"`
	TimeLimitSeconds int     `yaml:"timeLimitSeconds,omitempty" json:"timeLimitSeconds,omitempty"`
}

// DiscoveryFile is the career discovery payload.
type DiscoveryFile struct {
	CareerPath   string `yaml:"careerPath,omitempty" json:"careerPath,omitempty"`
	WorldSetting string `yaml:"worldSetting,omitempty" json:"worldSetting,omitempty"`
}

// Loader reads scenario YAML files and upserts them into the repository.
type Loader struct {
	dir       string
	scenarios *repository.ScenarioRepository
	schema    *gojsonschema.Schema
	logger    *slog.Logger
}

// NewLoader creates a catalog loader for the given content directory.
func NewLoader(dir string, scenarios *repository.ScenarioRepository) (*Loader, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(scenarioSchema))
	if err != nil {
		return nil, fmt.Errorf("compile scenario schema: %w", err)
	}
	return &Loader{
		dir:       dir,
		scenarios: scenarios,
		schema:    schema,
		logger:    slog.Default(),
	}, nil
}

// LoadAll ingests every scenario document under the content directory.
// Invalid documents are logged and skipped so one bad file never blocks the
// rest of the catalog. Returns the number of scenarios upserted.
func (l *Loader) LoadAll(ctx context.Context) (int, error) {
	loaded := 0
	err := filepath.Walk(l.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		if err := l.loadFile(ctx, path); err != nil {
			l.logger.Warn("skipping invalid scenario document", "path", path, "error", err)
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("walk catalog dir: %w", err)
	}

	l.logger.Info("catalog loaded", "dir", l.dir, "scenarios", loaded)
	return loaded, nil
}

func (l *Loader) loadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scenario file: %w", err)
	}

	var file ScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse scenario file: %w", err)
	}

	if err := l.validate(file); err != nil {
		return err
	}

	scenario := file.toScenario()
	if err := scenario.Validate(); err != nil {
		return err
	}

	return l.upsert(ctx, scenario)
}

// validate checks the document against the embedded JSON schema. The YAML
// is round-tripped through JSON because the schema engine speaks JSON.
func (l *Loader) validate(file ScenarioFile) error {
	doc, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode scenario document: %w", err)
	}

	result, err := l.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate scenario document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("scenario document invalid: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func (f ScenarioFile) toScenario() *domain.Scenario {
	s := &domain.Scenario{
		Mode:        domain.Mode(f.Mode),
		Status:      domain.ScenarioStatus(f.Status),
		Title:       domain.LocalizedText(f.Title),
		Description: domain.LocalizedText(f.Description),
	}
	s.ID = f.ID
	if s.Status == "" {
		s.Status = domain.ScenarioStatusActive
	}

	s.TaskTemplates = make([]domain.TaskTemplate, 0, len(f.Tasks))
	for _, t := range f.Tasks {
		typ := domain.TaskType(t.Type)
		if typ == "" {
			typ = domain.TaskTypeQuestion
		}
		s.TaskTemplates = append(s.TaskTemplates, domain.TaskTemplate{
			ID:           t.ID,
			Type:         typ,
			Title:        domain.LocalizedText(t.Title),
			Instructions: domain.LocalizedText(t.Instructions),
			MaxScore:     t.MaxScore,
			Domains:      t.Domains,
		})
	}

	if f.PBL != nil {
		s.PBL = &domain.PBLPayload{KSAMapping: f.PBL.KSAMapping}
	}
	if f.Assessment != nil {
		s.Assessment = &domain.AssessmentPayload{
			PassingScore:     int(f.Assessment.PassingScore),
			TimeLimitSeconds: f.Assessment.TimeLimitSeconds,
		}
	}
	if f.Discovery != nil {
		s.Discovery = &domain.DiscoveryPayload{
			CareerPath:   f.Discovery.CareerPath,
			WorldSetting: f.Discovery.WorldSetting,
		}
	}

	return s
}

// upsert replaces an existing scenario's authored fields or creates a new
// one under the document's own id.
func (l *Loader) upsert(ctx context.Context, scenario *domain.Scenario) error {
	_, err := l.scenarios.Update(ctx, scenario.ID, func(existing *domain.Scenario) {
		existing.Mode = scenario.Mode
		existing.Status = scenario.Status
		existing.Title = scenario.Title
		existing.Description = scenario.Description
		existing.TaskTemplates = scenario.TaskTemplates
		existing.PBL = scenario.PBL
		existing.Assessment = scenario.Assessment
		existing.Discovery = scenario.Discovery
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrScenarioNotFound) {
		return fmt.Errorf("update scenario %s: %w", scenario.ID, err)
	}

	if _, err := l.scenarios.Create(ctx, scenario); err != nil {
		return fmt.Errorf("create scenario %s: %w", scenario.ID, err)
	}
	return nil
}
