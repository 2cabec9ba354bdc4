package model

// MetricBundle is the flat record of derived metrics that every scoring
// engine reads. Numeric fields are optional Fields; absence means the
// underlying data was missing or too short, and scoring treats it as "no
// contribution".
type MetricBundle struct {
	Symbol string `json:"symbol"`

	// Liquidity / solvency
	Cash             Field `json:"-"`
	TotalDebt        Field `json:"-"`
	MonthlyBurn      Field `json:"-"`
	RunwayMonths     Field `json:"-"`
	DebtToCash       Field `json:"-"`
	InterestCoverage Field `json:"-"`

	// Operations
	RevenueChangePct Field `json:"-"`

	// Market / attention
	VolumeRatio   Field `json:"-"`
	FloatRatio    Field `json:"-"`
	PeakGainPct   Field `json:"-"`
	PullbackPct   Field `json:"-"`
	DaysSincePeak Field `json:"-"`

	// Dilution mechanics
	DilutionMechanismActive bool `json:"dilution_mechanism_active"`
	RecentInsiderSelling    bool `json:"recent_insider_selling"`

	// QuartersAvailable is the number of fiscal quarters the calculators
	// had to work with; below the scoring minimum the candidate lands in
	// the insufficient-data tier.
	QuartersAvailable int `json:"quarters_available"`
}
