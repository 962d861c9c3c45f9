package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a free-form object persisted as jsonb.
type JSONMap map[string]interface{}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONMap source %T", value)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*j = result
	return nil
}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j JSONMap) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]interface{}(j))
}

func (j JSONMap) GetMap(key string) (JSONMap, bool) {
	switch v := j[key].(type) {
	case map[string]interface{}:
		return JSONMap(v), true
	case JSONMap:
		return v, true
	}
	return nil, false
}

// ToJSONMap snapshots v through its JSON representation. Nil yields nil.
func ToJSONMap(v interface{}) JSONMap {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return JSONMap{"error": err.Error()}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return JSONMap{"value": string(b)}
	}
	return out
}
