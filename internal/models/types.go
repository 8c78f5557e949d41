package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON 任意 JSON 对象列（审计详情）
type JSON map[string]interface{}

// Value 实现 driver.Valuer
func (j JSON) Value() (driver.Value, error) {
	return jsonValue(j == nil, j)
}

// Scan 实现 sql.Scanner，NULL 读为空对象
func (j *JSON) Scan(value interface{}) error {
	*j = JSON{}
	return scanJSON(value, j)
}

// StringArray JSON 数组列（关键词）
type StringArray []string

// Value 实现 driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	return jsonValue(s == nil, s)
}

// Scan 实现 sql.Scanner，NULL 读为空数组
func (s *StringArray) Scan(value interface{}) error {
	*s = StringArray{}
	return scanJSON(value, s)
}

func jsonValue(isNil bool, v interface{}) (driver.Value, error) {
	if isNil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// sqlite 返回 string，postgres json 列返回 []byte
func scanJSON(value interface{}, dest interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan json column: unsupported type %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
