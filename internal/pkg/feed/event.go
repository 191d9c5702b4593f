// Package feed 行级变更推送：服务在提交后发布事件，监听者按 (表, 过滤条件) 订阅并触发重新读取。
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

const (
	TableIdeas          = "ideas"
	TableCommunityPosts = "community_posts"
	TablePostComments   = "community_post_comments"
	TableIdeaComments   = "idea_comments"
	TablePostLikes      = "community_post_likes"
	TableIdeaLikes      = "idea_likes"
	TableFavorites      = "favorites"
	TableMessages       = "messages"
	TableCollabRequests = "collaboration_requests"
	TableProfiles       = "profiles"
	TableSettings       = "settings"
	TableMemberships    = "memberships"
)

const channelPrefix = "feed:"

// FilterColumns 每张表允许作为订阅过滤条件的列
var FilterColumns = map[string][]string{
	TableIdeas:          {"user_id"},
	TableCommunityPosts: {"channel", "user_id"},
	TablePostComments:   {"post_id"},
	TableIdeaComments:   {"idea_id"},
	TablePostLikes:      {"post_id"},
	TableIdeaLikes:      {"idea_id"},
	TableFavorites:      {"user_id"},
	TableMessages:       {"recipient_id", "sender_id", "thread_id"},
	TableCollabRequests: {"owner_id", "requester_id"},
	TableProfiles:       {"user_id"},
	TableSettings:       {"user_id"},
	TableMemberships:    {"user_id"},
}

// Event 一次已提交的行变更
type Event struct {
	Type   EventType       `json:"type"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record,omitempty"`
	Old    json.RawMessage `json:"old,omitempty"`
	TS     time.Time       `json:"ts"`
}

// Key 订阅键，Filter 形如 "post_id=eq.42"，为空表示整表
type Key struct {
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

// Channel 键对应的发布通道
func (k Key) Channel() string {
	if k.Filter == "" {
		return channelPrefix + k.Table
	}
	return channelPrefix + k.Table + ":" + k.Filter
}

// Column 过滤条件中的列与值
func (k Key) Column() (string, string, bool) {
	if k.Filter == "" {
		return "", "", false
	}
	col, val, ok := strings.Cut(k.Filter, "=eq.")
	return col, val, ok
}

// Validate 表名必须已声明，过滤列必须在声明的列中
func (k Key) Validate() error {
	cols, ok := FilterColumns[k.Table]
	if !ok {
		return fmt.Errorf("unknown table %q", k.Table)
	}
	if k.Filter == "" {
		return nil
	}
	col, val, ok := k.Column()
	if !ok || val == "" {
		return fmt.Errorf("malformed filter %q", k.Filter)
	}
	for _, c := range cols {
		if c == col {
			return nil
		}
	}
	return fmt.Errorf("column %q is not filterable on %s", col, k.Table)
}

// Eq 构造 "<col>=eq.<val>" 过滤条件
func Eq(table, column string, value any) Key {
	return Key{Table: table, Filter: fmt.Sprintf("%s=eq.%v", column, value)}
}
