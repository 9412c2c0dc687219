package hashing

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-sliced-bcrypt/bcrypt"
)

// Calibration is the outcome of [Calibrate].
type Calibration struct {
	// Cost is the highest cost whose measured hash time stayed at or under
	// the target, or the lower bound of the search range if none did.
	Cost int
	// Elapsed is the measured hash time at Cost.
	Elapsed time.Duration
	// CPUModel and Cores describe the host the measurement ran on.  They are
	// empty when the host does not report them.
	CPUModel string
	Cores    int
}

// String renders the calibration for logs and CLI output.
func (c Calibration) String() string {
	return fmt.Sprintf("cost %d (%v) on %q, %d cores", c.Cost, c.Elapsed, c.CPUModel, c.Cores)
}

// CalibrateOption configures [Calibrate].
type CalibrateOption func(*calibrateConfig)

type calibrateConfig struct {
	minCost int
	maxCost int
	log     logrus.FieldLogger
	measure func(cost int) (time.Duration, error)
}

// WithCostRange bounds the search.  Values are clamped to
// [bcrypt.MinCost, bcrypt.MaxCost].
func WithCostRange(lo, hi int) CalibrateOption {
	return func(c *calibrateConfig) {
		c.minCost = max(lo, bcrypt.MinCost)
		c.maxCost = min(hi, bcrypt.MaxCost)
	}
}

// WithCalibrationLogger sets the logger for per-cost measurements.
func WithCalibrationLogger(l logrus.FieldLogger) CalibrateOption {
	return func(c *calibrateConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Calibrate finds the highest bcrypt cost whose hash time on this host stays
// at or under target.  Each cost doubles the work, so the search stops as
// soon as doubling the last measurement would exceed target; costs that are
// certain to be too slow are never run.
//
//	cal, err := hashing.Calibrate(250 * time.Millisecond)
//	h, _ := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: cal.Cost})
func Calibrate(target time.Duration, opts ...CalibrateOption) (Calibration, error) {
	cfg := calibrateConfig{
		minCost: bcrypt.MinCost,
		maxCost: bcrypt.MaxCost,
		log:     logrus.StandardLogger(),
		measure: measureCost,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if target <= 0 {
		return Calibration{}, fmt.Errorf("%w: calibration target %v must be positive", ErrInvalidOption, target)
	}
	if cfg.minCost > cfg.maxCost {
		return Calibration{}, fmt.Errorf("%w: empty cost range [%d, %d]", ErrInvalidOption, cfg.minCost, cfg.maxCost)
	}

	best := cfg.minCost
	elapsed, err := cfg.measure(best)
	if err != nil {
		return Calibration{}, err
	}
	cfg.log.WithFields(logrus.Fields{"cost": best, "elapsed": elapsed}).Debug("hashing: calibration sample")

	for cost := best + 1; cost <= cfg.maxCost && 2*elapsed <= target; cost++ {
		d, err := cfg.measure(cost)
		if err != nil {
			return Calibration{}, err
		}
		cfg.log.WithFields(logrus.Fields{"cost": cost, "elapsed": d}).Debug("hashing: calibration sample")
		if d > target {
			break
		}
		best, elapsed = cost, d
	}

	cal := Calibration{Cost: best, Elapsed: elapsed}
	describeHost(&cal, cfg.log)
	return cal, nil
}

// measureCost times one full hash at cost with a fixed all-zero salt.
func measureCost(cost int) (time.Duration, error) {
	salt := bcrypt.EncodeSalt([bcrypt.SaltLen]byte{}, cost)
	start := time.Now()
	if _, err := bcrypt.Hash([]byte("calibration"), salt); err != nil {
		return 0, fmt.Errorf("hashing: calibrate cost %d: %w", cost, err)
	}
	return time.Since(start), nil
}

func describeHost(cal *Calibration, log logrus.FieldLogger) {
	infos, err := cpu.Info()
	if err != nil {
		log.WithError(err).Warn("hashing: cpu info unavailable")
	} else if len(infos) > 0 {
		cal.CPUModel = infos[0].ModelName
	}

	cores, err := cpu.Counts(true)
	if err != nil {
		log.WithError(err).Warn("hashing: cpu count unavailable")
		return
	}
	cal.Cores = cores
}
