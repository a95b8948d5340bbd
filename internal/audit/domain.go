package audit

import (
	"time"

	"github.com/google/uuid"
)

// LoginEvent is one appended fact in the per-principal login history. Events
// are immutable once recorded.
type LoginEvent struct {
	ID          uuid.UUID `json:"id"`
	PrincipalID int64     `json:"principal_id"`
	At          time.Time `json:"at"`
	IP          string    `json:"ip"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	UserAgent   string    `json:"user_agent"`
	Browser     string    `json:"browser"`
	Device      string    `json:"device"`
	OS          string    `json:"os"`
}

// SuspicionReport is the advisory output of anomaly analysis. It is computed
// on demand and never persisted.
type SuspicionReport struct {
	PrincipalID int64        `json:"principal_id"`
	Flagged     bool         `json:"flagged"`
	Reasons     []string     `json:"reasons"`
	Events      []LoginEvent `json:"events"`
	WindowStart time.Time    `json:"window_start"`
	WindowEnd   time.Time    `json:"window_end"`
}

// Thresholds tunes the anomaly heuristics. Operators adjust these through
// configuration; the detector never hard-codes them.
type Thresholds struct {
	WindowHours          int
	HourlyLoginLimit     int
	DistinctCountryLimit int
	RelocationWindow     time.Duration
}

// DefaultThresholds returns the shipped sensitivity settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowHours:          24,
		HourlyLoginLimit:     10,
		DistinctCountryLimit: 3,
		RelocationWindow:     60 * time.Minute,
	}
}

func (t Thresholds) normalized() Thresholds {
	def := DefaultThresholds()
	if t.WindowHours <= 0 {
		t.WindowHours = def.WindowHours
	}
	if t.HourlyLoginLimit <= 0 {
		t.HourlyLoginLimit = def.HourlyLoginLimit
	}
	if t.DistinctCountryLimit <= 0 {
		t.DistinctCountryLimit = def.DistinctCountryLimit
	}
	if t.RelocationWindow <= 0 {
		t.RelocationWindow = def.RelocationWindow
	}
	return t
}
