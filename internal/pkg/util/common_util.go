package util

import (
	"regexp"
	"strconv"
	"strings"
)

var tagRegex = regexp.MustCompile(`#(\S+)`)

// ExtractTags 只负责提取去重后的标签列表
func ExtractTags(rawContent string) []string {
	matches := tagRegex.FindAllStringSubmatch(rawContent, -1)

	tagSet := make(map[string]struct{})
	var tags []string

	for _, m := range matches {
		if len(m) > 1 {
			tagName := strings.Trim(m[1], ".,，。!?！？")
			if tagName != "" {
				if _, exists := tagSet[tagName]; !exists {
					tagSet[tagName] = struct{}{}
					tags = append(tags, tagName)
				}
			}
		}
	}

	return tags
}

// MergeTags 合并显式标签与正文中的 #标签，保持首次出现顺序
func MergeTags(explicit []string, content string) []string {
	seen := make(map[string]struct{}, len(explicit))
	out := make([]string, 0, len(explicit))
	add := func(t string) {
		t = strings.TrimSpace(strings.TrimPrefix(t, "#"))
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range explicit {
		add(t)
	}
	for _, t := range ExtractTags(content) {
		add(t)
	}
	return out
}

// Paginate 规范化分页参数，返回 limit 与 offset
func Paginate(page, pageSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if maxSize > 0 && pageSize > maxSize {
		pageSize = maxSize
	}
	return pageSize, (page - 1) * pageSize
}

// PtrInt 用于将 int 转换为 *int
func PtrInt(i int) *int {
	return &i
}

// PtrUint64 用于将 uint64 转换为 *uint64
func PtrUint64(i uint64) *uint64 {
	return &i
}

// StrSliceToUInt64Slice 字符串 ID 列表转为 uint64，任一项非法即返回错误
func StrSliceToUInt64Slice(in []string) ([]uint64, error) {
	out := make([]uint64, 0, len(in))
	for _, v := range in {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
