package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// OptionalBool distinguishes an absent key from an explicit value in PATCH
// bodies. null clears.
type OptionalBool struct {
	Set   bool
	Value *bool
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		o.Value = &b
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

// OptionalDate accepts RFC3339 or a bare YYYY-MM-DD.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			o.Value = &t
			return nil
		}
	}
	return &time.ParseError{Layout: "2006-01-02", Value: s, Message: ": expected RFC3339 or YYYY-MM-DD"}
}
