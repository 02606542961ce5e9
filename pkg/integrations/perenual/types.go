package perenual

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// listResponse is the /species-list payload.
type listResponse struct {
	Data        []species `json:"data"`
	Total       int       `json:"total"`
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
}

// species is a species record as returned by both endpoints. Detail-only
// fields are empty in list responses.
type species struct {
	ID             int         `json:"id"`
	CommonName     string      `json:"common_name"`
	ScientificName []string    `json:"scientific_name"`
	OtherName      []string    `json:"other_name"`
	Cycle          string      `json:"cycle"`
	Watering       string      `json:"watering"`
	Sunlight       stringList  `json:"sunlight"`
	DefaultImage   *image      `json:"default_image"`
	Type           string      `json:"type"`
	Dimensions     *dimensions `json:"dimensions"`

	Description       string `json:"description"`
	CareLevel         string `json:"care_level"`
	PoisonousToHumans flag   `json:"poisonous_to_humans"`
	PoisonousToPets   flag   `json:"poisonous_to_pets"`
}

type image struct {
	Thumbnail  string `json:"thumbnail"`
	RegularURL string `json:"regular_url"`
}

// dimensions covers both shapes the API has used: max_height in list
// records and a generic max_value on detail records.
type dimensions struct {
	MinHeight float64 `json:"min_height"`
	MaxHeight float64 `json:"max_height"`
	Type      string  `json:"type"`
	MaxValue  float64 `json:"max_value"`
	Unit      string  `json:"unit"`
}

func (d *dimensions) height() float64 {
	if d == nil {
		return 0
	}
	if d.MaxHeight > 0 {
		return d.MaxHeight
	}
	if d.Type == "" || d.Type == "Height" {
		return d.MaxValue
	}
	return 0
}

// flag decodes the upstream's mix of 0/1 numbers, booleans and strings.
// A missing or null value stays unset.
type flag struct {
	Set   bool
	Value bool
}

func (f *flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flag{}
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flag{Set: true, Value: v}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flag{Set: true, Value: n != 0}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if v, err := strconv.ParseBool(s); err == nil {
		*f = flag{Set: true, Value: v}
	}
	return nil
}

func (f flag) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// stringList accepts either a JSON array of strings or a single string.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one == "" {
		*l = nil
	} else {
		*l = stringList{one}
	}
	return nil
}
