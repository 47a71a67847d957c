package source

import (
	"testing"
)

func TestFrameRefFromKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantTime string
		wantOK   bool
	}{
		{
			name:     "regular frame",
			key:      "weather/2025/01/12/weather_0830.json",
			wantTime: "2025-01-12T08:30:00+08:00",
			wantOK:   true,
		},
		{
			name:     "midnight frame",
			key:      "weather/2025/12/31/weather_0000.json",
			wantTime: "2025-12-31T00:00:00+08:00",
			wantOK:   true,
		},
		{
			name: "latest pointer skipped",
			key:  "weather/2025/01/12/weather_latest.json",
		},
		{
			name: "not json",
			key:  "weather/2025/01/12/weather_0830.csv",
		},
		{
			name: "wrong filename prefix",
			key:  "weather/2025/01/12/humidity_0830.json",
		},
		{
			name: "time token wrong length",
			key:  "weather/2025/01/12/weather_830.json",
		},
		{
			name: "non-numeric time",
			key:  "weather/2025/01/12/weather_08x0.json",
		},
		{
			name: "impossible time",
			key:  "weather/2025/01/12/weather_2790.json",
		},
		{
			name: "missing date levels",
			key:  "weather/2025/weather_0830.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := frameRefFromKey(tt.key, 1024)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ref.Time != tt.wantTime {
				t.Errorf("Time = %q, want %q", ref.Time, tt.wantTime)
			}
			if ref.Key != tt.key || ref.Size != 1024 {
				t.Errorf("ref = %+v", ref)
			}
		})
	}
}

func TestDateFromPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
		wantOK bool
	}{
		{"weather/2025/01/12/", "2025-01-12", true},
		{"weather/2025/01/", "", false},
		{"weather/2025/13/42/", "", false},
		{"weather/aaaa/bb/cc/", "", false},
	}
	for _, tt := range tests {
		got, ok := dateFromPrefix(tt.prefix)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("dateFromPrefix(%q) = %q, %v; want %q, %v", tt.prefix, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDecodeSnapshot(t *testing.T) {
	payload := []byte(`{
		"observation_time": "2025-01-12T08:30:00+08:00",
		"data": [
			{"station_id": "466920", "latitude": 25.03, "longitude": 121.51, "humidity": 78.0},
			{"station_id": "C0A520", "latitude": null, "longitude": 121.6, "humidity": 82.0},
			{"station_id": "C0A531", "latitude": 24.99, "longitude": 121.3, "humidity": null}
		]
	}`)

	stations, err := decodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stations) != 3 {
		t.Fatalf("got %d stations, want 3", len(stations))
	}
	if stations[0].Humidity == nil || *stations[0].Humidity != 78.0 {
		t.Errorf("station 0 humidity = %v", stations[0].Humidity)
	}
	if stations[1].Latitude != nil {
		t.Error("station 1 latitude should be nil")
	}
	if stations[2].Humidity != nil {
		t.Error("station 2 humidity should be nil")
	}
}

func TestDecodeSnapshotMalformed(t *testing.T) {
	if _, err := decodeSnapshot([]byte(`{"data": [`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}
