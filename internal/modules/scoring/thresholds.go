package scoring

// Thresholds holds the tunable cutoffs of the scoring engine. Business has
// not frozen these numbers, so they are configuration with compiled-in
// defaults rather than constants (overridable via the thresholds YAML file).
type Thresholds struct {
	// Grade ladder lower bounds, descending.
	GradeAPlus float64 `yaml:"grade_a_plus"`
	GradeA     float64 `yaml:"grade_a"`
	GradeB     float64 `yaml:"grade_b"`
	GradeC     float64 `yaml:"grade_c"`
	GradeDPlus float64 `yaml:"grade_d_plus"`
	GradeD     float64 `yaml:"grade_d"`
	GradeE     float64 `yaml:"grade_e"`

	// Verdict branching.
	VerdictGo       float64 `yaml:"verdict_go"`       // >= : GO
	VerdictReserved float64 `yaml:"verdict_reserved"` // >= : reserved, below: NO GO

	// Missing-data penalties.
	PenaltyBlocker float64 `yaml:"penalty_blocker"`
	PenaltyWarn    float64 `yaml:"penalty_warn"`
	PenaltyInfo    float64 `yaml:"penalty_info"`
	PenaltyCap     float64 `yaml:"penalty_cap"`
}

// DefaultThresholds returns the compiled-in cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GradeAPlus: 80,
		GradeA:     72,
		GradeB:     65,
		GradeC:     50,
		GradeDPlus: 42,
		GradeD:     35,
		GradeE:     20,

		VerdictGo:       65,
		VerdictReserved: 40,

		PenaltyBlocker: 8,
		PenaltyWarn:    3,
		PenaltyInfo:    1,
		PenaltyCap:     25,
	}
}
