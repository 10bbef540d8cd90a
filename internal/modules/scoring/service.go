package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring/scorers"
	"github.com/avelin/comite/pkg/logger"
)

// Service is the single pillar-scoring engine. The pillar set flag selects
// the full committee grid or the reduced quick-look grid; both run through
// the same scorers so there is exactly one source of truth per pillar.
type Service struct {
	thresholds Thresholds
	pillarSet  PillarSet
	log        zerolog.Logger

	value         *scorers.ValueScorer
	location      *scorers.LocationScorer
	liquidity     *scorers.LiquidityScorer
	worksRisk     *scorers.WorksRiskScorer
	dealStructure *scorers.DealStructureScorer
	legalUrbanism *scorers.LegalUrbanismScorer
	risk          *scorers.RiskScorer
}

// NewService creates a scoring service.
func NewService(th Thresholds, set PillarSet, log zerolog.Logger) *Service {
	if set != PillarSetMinimal {
		set = PillarSetFull
	}
	return &Service{
		thresholds:    th,
		pillarSet:     set,
		log:           logger.ForComponent(log, "scoring"),
		value:         scorers.NewValueScorer(),
		location:      scorers.NewLocationScorer(),
		liquidity:     scorers.NewLiquidityScorer(),
		worksRisk:     scorers.NewWorksRiskScorer(),
		dealStructure: scorers.NewDealStructureScorer(),
		legalUrbanism: scorers.NewLegalUrbanismScorer(),
		risk:          scorers.NewRiskScorer(),
	}
}

// Thresholds returns the active cutoffs (read-only).
func (s *Service) Thresholds() Thresholds {
	return s.thresholds
}

// Score computes the SmartScoreResult for one operation. Pure: the same
// summary always yields the same result, and the input is never mutated.
func (s *Service) Score(op normalize.OperationSummary) SmartScoreResult {
	maxPoints := fullSetMaxPoints
	if s.pillarSet == PillarSetMinimal {
		maxPoints = minimalSetMaxPoints
	}

	pillars := make([]Pillar, 0, len(maxPoints))
	sumPoints := 0.0
	sumAvailableMax := 0.0
	withData := 0

	for _, key := range pillarOrder {
		max, inSet := maxPoints[key]
		if !inSet {
			continue
		}
		res := s.scorePillar(key, op)
		p := Pillar{
			Key:       key,
			Label:     pillarLabels[key],
			MaxPoints: max,
			RawScore:  res.Score,
			HasData:   res.HasData,
			Reasons:   res.Reasons,
		}
		if res.HasData {
			p.Points = round1(res.Score / 100 * max)
			sumPoints += p.Points
			sumAvailableMax += max
			withData++
		}
		pillars = append(pillars, p)
	}

	missing := ComputeMissing(op)
	penalty := TotalMissingPenalty(missing, s.thresholds)

	insufficient := withData == 0
	score := 0.0
	if !insufficient {
		// Renormalize over available pillars so the aggregate stays 0-100
		// whatever subset of data is present, then subtract the penalty.
		score = sumPoints / sumAvailableMax * 100
		score = round1(math.Max(0, score-penalty))
	}

	grade := Grade(score, s.thresholds)
	if insufficient {
		grade = "F"
	}

	result := SmartScoreResult{
		Score:               score,
		Grade:               grade,
		Verdict:             Verdict(score, grade, pillars, insufficient, s.thresholds),
		Pillars:             pillars,
		TotalMissingPenalty: penalty,
		Missing:             missing,
		Recommendations:     Recommendations(pillars, missing),
		InsufficientData:    insufficient,
	}

	s.log.Debug().
		Float64("score", result.Score).
		Str("grade", result.Grade).
		Int("pillars_with_data", withData).
		Float64("penalty", penalty).
		Msg("Operation scored")

	return result
}

func (s *Service) scorePillar(key string, op normalize.OperationSummary) scorers.Result {
	switch key {
	case PillarValue:
		return s.value.Calculate(op)
	case PillarLocation:
		return s.location.Calculate(op)
	case PillarLiquidity:
		return s.liquidity.Calculate(op)
	case PillarWorksRisk:
		return s.worksRisk.Calculate(op)
	case PillarDealStructure:
		return s.dealStructure.Calculate(op)
	case PillarLegalUrbanism:
		return s.legalUrbanism.Calculate(op)
	case PillarRisk:
		return s.risk.Calculate(op)
	default:
		return scorers.NoData()
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
