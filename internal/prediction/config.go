package prediction

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/girguy/concaf/internal/config"
	"github.com/girguy/concaf/internal/models"
)

const (
	// DefaultDecayRate is the exponential recency constant applied per year of age.
	DefaultDecayRate = 0.1
	// DefaultScorelineCutoff is the highest goal count enumerated per side.
	DefaultScorelineCutoff = 6
)

// Config is the explicit configuration passed to every engine call
type Config struct {
	DecayRate       float64
	ReferenceDate   time.Time
	ScorelineCutoff int
	Workers         int
	// FollowClock replaces ReferenceDate with the current time at the start
	// of every batch. Set when no reference date is configured.
	FollowClock bool
}

// DefaultConfig returns the engine defaults with the reference date set to now
func DefaultConfig() Config {
	return Config{
		DecayRate:       DefaultDecayRate,
		ReferenceDate:   time.Now().UTC(),
		ScorelineCutoff: DefaultScorelineCutoff,
		Workers:         runtime.GOMAXPROCS(0),
	}
}

// FromConfig converts the model section of the app config to an engine config
func FromConfig(cfg *config.ModelConfig) (Config, error) {
	if cfg == nil {
		return Config{}, models.NewPredictionError("prediction.FromConfig", models.ErrInvalidConfiguration, "model config is required")
	}

	pc := DefaultConfig()
	pc.DecayRate = cfg.DecayRate
	pc.ScorelineCutoff = cfg.ScorelineCutoff
	if cfg.Workers > 0 {
		pc.Workers = cfg.Workers
	}
	if strings.TrimSpace(cfg.ReferenceDate) != "" {
		ref, err := ParseReferenceDate(cfg.ReferenceDate)
		if err != nil {
			return Config{}, err
		}
		pc.ReferenceDate = ref
	} else {
		pc.FollowClock = true
	}

	return pc, pc.Validate()
}

// ParseReferenceDate accepts dd/mm/yyyy, yyyy-mm-dd or RFC3339.
func ParseReferenceDate(value string) (time.Time, error) {
	for _, layout := range []string{models.DateLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, models.NewPredictionError("prediction.ParseReferenceDate", models.ErrInvalidConfiguration, "unparseable reference date %q", value)
}

// Validate checks the engine parameters before any computation starts
func (c Config) Validate() error {
	const op = "prediction.Config.Validate"
	if math.IsNaN(c.DecayRate) || math.IsInf(c.DecayRate, 0) {
		return models.NewPredictionError(op, models.ErrInvalidConfiguration, "decay rate must be finite")
	}
	if c.DecayRate < 0 {
		return models.NewPredictionError(op, models.ErrInvalidConfiguration, "decay rate cannot be negative (got %g)", c.DecayRate)
	}
	if c.ScorelineCutoff <= 0 {
		return models.NewPredictionError(op, models.ErrInvalidConfiguration, "scoreline cutoff must be positive (got %d)", c.ScorelineCutoff)
	}
	if c.Workers < 0 {
		return models.NewPredictionError(op, models.ErrInvalidConfiguration, "workers cannot be negative (got %d)", c.Workers)
	}
	if c.ReferenceDate.IsZero() {
		return models.NewPredictionError(op, models.ErrInvalidConfiguration, "reference date is required")
	}
	return nil
}

func (c Config) String() string {
	reference := c.ReferenceDate.Format("2006-01-02")
	if c.FollowClock {
		reference = "now"
	}
	return fmt.Sprintf("decay=%g reference=%s cutoff=%d workers=%d",
		c.DecayRate, reference, c.ScorelineCutoff, c.Workers)
}
