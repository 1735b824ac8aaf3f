// Package domain defines the core types shared across the polyterm client:
// prediction-market events, their markets, trending snapshots, and chat
// messages exchanged with the analysis assistant.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// Flexible numerics
// ---------------------------------------------------------------------------

// Volume is a traded-volume figure in USD. The upstream API is inconsistent
// about whether volumes arrive as JSON numbers or numeric strings, so Volume
// accepts both. Null and absent decode to zero.
type Volume float64

// UnmarshalJSON accepts a JSON number, a numeric string, or null.
func (v *Volume) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*v = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*v = Volume(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Volume(f)
	return nil
}

// MarshalJSON always emits a JSON number.
func (v Volume) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(v))
}

// Float64 returns the volume as a plain float64.
func (v Volume) Float64() float64 { return float64(v) }

// ---------------------------------------------------------------------------
// Events and markets
// ---------------------------------------------------------------------------

// Event is a prediction-market event: a topic grouping one or more markets.
// Events are replaced wholesale on every fetch cycle and never mutated in
// place; everything outside the query layer refers to them by ID.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	EndDate     string   `json:"endDate"`
	Markets     []Market `json:"markets"`
	Image       string   `json:"image"`
}

// Market is a single question within an event, with its current outcome
// price and traded volume. A market belongs to exactly one event.
type Market struct {
	ID           string  `json:"id"`
	Question     string  `json:"question"`
	OutcomePrice float64 `json:"outcomePrices"`
	Volume       Volume  `json:"volume"`
}

// TrendingEvent is an independent snapshot of a high-volume event. It is not
// linked to an Event by reference, only by ID equality.
type TrendingEvent struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Volume24hr Volume `json:"volume24hr"`
	EndDate    int64  `json:"endDate"`
	Image      string `json:"image"`
	Category   string `json:"category"`
}

// Snapshot is a point-in-time observation of one market, captured by the
// snapshot gatherer for local history.
type Snapshot struct {
	EventID      string
	EventTitle   string
	Category     string
	MarketID     string
	Question     string
	OutcomePrice float64
	Volume       float64
	CapturedAt   time.Time
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

// Message roles, matching the wire format of the chat endpoint.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn. Messages are immutable once appended to a
// session.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
