package domain

import (
	"encoding/json"
	"testing"
)

func TestVolumeUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `12345.6`, 12345.6},
		{"integer", `850`, 850},
		{"numeric string", `"12345.6"`, 12345.6},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v Volume
			if err := json.Unmarshal([]byte(tc.in), &v); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tc.in, err)
			}
			if v.Float64() != tc.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tc.in, v.Float64(), tc.want)
			}
		})
	}

	var v Volume
	if err := json.Unmarshal([]byte(`"not a number"`), &v); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestVolumeMarshal(t *testing.T) {
	out, err := json.Marshal(Volume(1500))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "1500" {
		t.Errorf("Marshal = %s, want 1500", out)
	}
}

func TestEventDecode(t *testing.T) {
	raw := `{
		"id": "e1",
		"title": "Will X happen?",
		"description": "desc",
		"category": "Politics",
		"endDate": "2026-11-03T00:00:00Z",
		"image": "https://example.com/x.png",
		"markets": [
			{"id": "m1", "question": "Yes by March?", "outcomePrices": 0.42, "volume": "98765.4"},
			{"id": "m2", "question": "Yes by June?", "outcomePrices": 0.61, "volume": 1200}
		]
	}`

	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ev.ID != "e1" || ev.Title != "Will X happen?" {
		t.Errorf("unexpected event identity: %+v", ev)
	}
	if len(ev.Markets) != 2 {
		t.Fatalf("len(Markets) = %d, want 2", len(ev.Markets))
	}
	if ev.Markets[0].Volume.Float64() != 98765.4 {
		t.Errorf("string volume = %v, want 98765.4", ev.Markets[0].Volume.Float64())
	}
	if ev.Markets[1].Volume.Float64() != 1200 {
		t.Errorf("numeric volume = %v, want 1200", ev.Markets[1].Volume.Float64())
	}
	if ev.Markets[0].OutcomePrice != 0.42 {
		t.Errorf("OutcomePrice = %v, want 0.42", ev.Markets[0].OutcomePrice)
	}
}

func TestTrendingEventDecode(t *testing.T) {
	raw := `{"id":"t1","title":"Trending","volume24hr":"500000","endDate":1767398400000,"image":"","category":"Crypto"}`

	var te TrendingEvent
	if err := json.Unmarshal([]byte(raw), &te); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if te.Volume24hr.Float64() != 500000 {
		t.Errorf("Volume24hr = %v, want 500000", te.Volume24hr.Float64())
	}
	if te.EndDate != 1767398400000 {
		t.Errorf("EndDate = %d, want 1767398400000", te.EndDate)
	}
}
