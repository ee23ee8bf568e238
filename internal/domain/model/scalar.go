package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Int64 decodes TikTok id/cursor values, which arrive either as JSON
// numbers or as quoted strings depending on the endpoint.
type Int64 int64

func (i *Int64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*i = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("parse int64 from %q: %w", s, err)
		}
		*i = Int64(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = Int64(v)
	return nil
}

func (i Int64) Int64() int64 { return int64(i) }

func (i Int64) String() string { return strconv.FormatInt(int64(i), 10) }

// BoolInt decodes has_more style flags, which some endpoints report as
// a bool and others as 0/1.
type BoolInt bool

func (b *BoolInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = BoolInt(v)
	default:
		var v int
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = v > 0
	}
	return nil
}

func (b BoolInt) Bool() bool { return bool(b) }
