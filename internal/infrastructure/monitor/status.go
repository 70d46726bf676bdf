package monitor

import "time"

// Status is the last observed health of the optional backends. Disabled
// backends report false with their Enabled flag unset.
type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	Mirror     bool      `json:"mirror_enabled"`
	RedisSlot  bool      `json:"redis_enabled"`
	LastCheck  time.Time `json:"last_check"`
}
