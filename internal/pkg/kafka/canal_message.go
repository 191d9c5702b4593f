package kafka

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

const canalTimeLayout = "2006-01-02 15:04:05"

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据，仅包含被修改的列
	Old []map[string]interface{} `json:"old"`

	SqlType   map[string]int    `json:"sqlType"`
	MysqlType map[string]string `json:"mysqlType"`
}

// OldValue 返回第 i 行某列的旧值，未修改时 ok 为 false
func (m *CanalMessage) OldValue(i int, column string) (interface{}, bool) {
	if i >= len(m.Old) || m.Old[i] == nil {
		return nil, false
	}
	v, ok := m.Old[i][column]
	return v, ok
}

// StrToUint64 Canal 的列值均以字符串下发，兼容数值类型
func StrToUint64(v interface{}) uint64 {
	switch val := v.(type) {
	case string:
		n, _ := strconv.ParseUint(val, 10, 64)
		return n
	case float64:
		return uint64(val)
	case json.Number:
		n, _ := strconv.ParseUint(val.String(), 10, 64)
		return n
	case int64:
		return uint64(val)
	case uint64:
		return val
	default:
		return 0
	}
}

func StrToInt(v interface{}) int {
	return int(StrToUint64(v))
}

// StrToBool tinyint(1) 以 "1"/"0" 下发
func StrToBool(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return val == "1" || strings.EqualFold(val, "true")
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return false
	}
}

func StrToString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// StrToTime 解析 datetime 列，忽略小数秒
func StrToTime(v interface{}) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(canalTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StrToTags tags 列为 JSON 数组字符串
func StrToTags(v interface{}) []string {
	s, ok := v.(string)
	if !ok || s == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return []string{}
	}
	return tags
}
