package jobboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Salary 同时接受 JSON 数字与字符串，保留原始文本，由 Int 严格解析。
type Salary string

// UnmarshalJSON 实现 json.Unmarshaler。
func (s *Salary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Salary(str)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("salary must be a number or string")
		}
		*s = Salary(n.String())
	}
	return nil
}

// Int 解析为非负整数。
func (s Salary) Int() (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
