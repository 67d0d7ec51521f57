package storage

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Data is a single sensor reading published by a device.
//
// The record format is owned by the storage service so decoding never fails on
// an unexpected field type: the typed fields are filled when they can be read
// and Raw always holds the record exactly as it was received.
type Data struct {
	From      string          `json:"from"` // id of the device that sent the reading
	Payload   Payload         `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
	Raw       json.RawMessage `json:"-"`
}

// Payload holds the sensor value. The type of Value is defined by the device schema
// so it is kept as raw json: use json.Unmarshal to read it into the expected type.
type Payload struct {
	SensorID int             `json:"sensorId"`
	Value    json.RawMessage `json:"value"`
}

// record mirrors Data without its json methods
type record Data

// UnmarshalJSON keeps b in Raw and reads the known fields leniently.
// sensorId may be a number or a numeric string, timestamp an ISO date string
// or milliseconds since the epoch.
func (d *Data) UnmarshalJSON(b []byte) error {
	*d = Data{Raw: append(json.RawMessage(nil), b...)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}

	d.From = readString(fields["from"])
	d.Timestamp = readTime(fields["timestamp"])

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(fields["payload"], &payload); err == nil {
		d.Payload.SensorID = readInt(payload["sensorId"])
		if v, ok := payload["value"]; ok {
			d.Payload.Value = append(json.RawMessage(nil), v...)
		}
	}
	return nil
}

// MarshalJSON returns the record as received when it came from the service
func (d Data) MarshalJSON() ([]byte, error) {
	if len(d.Raw) > 0 {
		return d.Raw, nil
	}
	return json.Marshal(record(d))
}

func readString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func readInt(raw json.RawMessage) int {
	raw = bytes.Trim(raw, `"`)
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return n
}

func readTime(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}
		}
		return t
	}

	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
