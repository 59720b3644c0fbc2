package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Metric is a computed quantity that is either measured or explicitly unavailable.
// The zero value is unavailable.
type Metric struct {
	value     float64
	available bool
	reason    string
}

// Available wraps a computed value. NaN and infinities are reported as unavailable.
func Available(value float64) Metric {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Unavailable("value is not finite")
	}
	return Metric{value: value, available: true}
}

// Unavailable builds a metric carrying the reason its inputs are missing.
func Unavailable(reason string) Metric {
	return Metric{reason: reason}
}

// Value returns the metric value and whether it is available.
func (m Metric) Value() (float64, bool) {
	return m.value, m.available
}

// IsAvailable reports whether the metric carries a value.
func (m Metric) IsAvailable() bool {
	return m.available
}

// Reason returns why the metric is unavailable; empty when available.
func (m Metric) Reason() string {
	return m.reason
}

// Format renders the value with the given verb, or "n/a" when unavailable.
func (m Metric) Format(verb string) string {
	if !m.available {
		return "n/a"
	}
	return fmt.Sprintf(verb, m.value)
}

type metricJSON struct {
	Status string   `json:"status"`
	Value  *float64 `json:"value,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// MarshalJSON encodes the metric with an explicit status so unavailable never reads as zero.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.available {
		return json.Marshal(metricJSON{Status: "unavailable", Reason: m.reason})
	}
	v := m.value
	return json.Marshal(metricJSON{Status: "available", Value: &v})
}

// UnmarshalJSON decodes the representation produced by MarshalJSON.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var raw metricJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Status == "available" && raw.Value != nil {
		*m = Available(*raw.Value)
		return nil
	}
	*m = Unavailable(raw.Reason)
	return nil
}

// Weight is an average bird weight reading; the zero value means "not weighed".
type Weight struct {
	kg      float64
	weighed bool
}

// WeightOf normalises a raw reading. Zero or negative readings mean the flock was not weighed.
func WeightOf(kg float64) Weight {
	if kg <= 0 || math.IsNaN(kg) || math.IsInf(kg, 0) {
		return Weight{}
	}
	return Weight{kg: kg, weighed: true}
}

// NotWeighed returns the absent reading.
func NotWeighed() Weight {
	return Weight{}
}

// Kg returns the reading in kilograms and whether the birds were weighed.
func (w Weight) Kg() (float64, bool) {
	return w.kg, w.weighed
}

// IsWeighed reports whether the reading is present.
func (w Weight) IsWeighed() bool {
	return w.weighed
}

// MarshalJSON encodes an absent reading as null.
func (w Weight) MarshalJSON() ([]byte, error) {
	if !w.weighed {
		return []byte("null"), nil
	}
	return json.Marshal(w.kg)
}

// UnmarshalJSON accepts null or a number; 0 decodes as not weighed.
func (w *Weight) UnmarshalJSON(data []byte) error {
	var kg *float64
	if err := json.Unmarshal(data, &kg); err != nil {
		return err
	}
	if kg == nil {
		*w = Weight{}
		return nil
	}
	*w = WeightOf(*kg)
	return nil
}
