package journal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

// seedFile is the YAML layout for bootstrapping journal settings.
type seedFile struct {
	CommissionPlans []struct {
		Name     string  `yaml:"name"`
		PerTrade float64 `yaml:"per_trade"`
		PerUnit  float64 `yaml:"per_unit"`
	} `yaml:"commission_plans"`
	Strategies []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"strategies"`
	Markets []struct {
		Code     string `yaml:"code"`
		Name     string `yaml:"name"`
		Currency string `yaml:"currency"`
	} `yaml:"markets"`
}

// SeedResult summarizes a settings seed run.
type SeedResult struct {
	Created int
	Skipped int // Entries that already existed
}

// SeedSettings loads commission plans, strategies and markets from a YAML
// file. Entries that already exist are skipped, so re-running a seed file is
// safe.
func (s *Service) SeedSettings(ctx context.Context, path string) (SeedResult, error) {
	var result SeedResult

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read seed file '%s': %w", path, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return result, fmt.Errorf("failed to parse seed file '%s': %w", path, err)
	}

	for _, p := range seed.CommissionPlans {
		err := s.AddCommissionPlan(ctx, &domain.CommissionPlan{Name: p.Name, PerTrade: p.PerTrade, PerUnit: p.PerUnit})
		if err := s.countSeed(ctx, &result, err, "commission plan", p.Name); err != nil {
			return result, err
		}
	}
	for _, st := range seed.Strategies {
		err := s.AddStrategy(ctx, &domain.Strategy{Name: st.Name, Description: st.Description})
		if err := s.countSeed(ctx, &result, err, "strategy", st.Name); err != nil {
			return result, err
		}
	}
	for _, m := range seed.Markets {
		err := s.AddMarket(ctx, &domain.Market{Code: m.Code, Name: m.Name, Currency: m.Currency})
		if err := s.countSeed(ctx, &result, err, "market", m.Code); err != nil {
			return result, err
		}
	}

	s.logger.Info(ctx, "Settings seeded", map[string]interface{}{
		"path": path, "created": result.Created, "skipped": result.Skipped,
	})
	return result, nil
}

// countSeed folds one create outcome into the result, treating duplicates as
// skips instead of failures.
func (s *Service) countSeed(ctx context.Context, result *SeedResult, err error, kind, name string) error {
	switch {
	case err == nil:
		result.Created++
		return nil
	case errors.Is(err, ports.ErrDuplicateEntry):
		s.logger.Debug(ctx, "Seed entry already exists", map[string]interface{}{"kind": kind, "name": name})
		result.Skipped++
		return nil
	default:
		return fmt.Errorf("failed to seed %s '%s': %w", kind, name, err)
	}
}
