// Package clipper 抓取网页并提取可读正文，用于把文章保存为想法草稿。
package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/go-shiori/go-readability"
)

const (
	userAgent      = "Mozilla/5.0 (compatible; IdeaVaultClipper/1.0)"
	maxBodyBytes   = 4 << 20
	maxContentRune = 20000
	maxTags        = 10
)

var (
	ErrUnsupportedURL = errors.New("only http and https urls are supported")
	ErrEmptyArticle   = errors.New("no readable content")
	spaceRegex        = regexp.MustCompile(`[ \t]+`)
	blankLinesRegex   = regexp.MustCompile(`\n{3,}`)
)

// Article 提取结果
type Article struct {
	Title   string
	Content string
	Excerpt string
	Site    string
	Tags    []string
}

type Clipper struct {
	client *resty.Client
}

func New() *Clipper {
	client := resty.New().
		SetTimeout(15*time.Second).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	return &Clipper{client: client}
}

// NewWithClient 测试中注入自定义客户端
func NewWithClient(client *resty.Client) *Clipper {
	return &Clipper{client: client}
}

func (s *Clipper) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return nil, ErrUnsupportedURL
	}

	resp, err := s.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", parsedURL.Host, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status %d", parsedURL.Host, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
	}
	html := string(body)

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyArticle, err)
	}

	content := normalize(article.TextContent)
	if content == "" {
		return nil, ErrEmptyArticle
	}
	if r := []rune(content); len(r) > maxContentRune {
		content = string(r[:maxContentRune])
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = parsedURL.Host
	}

	return &Article{
		Title:   title,
		Content: content,
		Excerpt: strings.TrimSpace(article.Excerpt),
		Site:    strings.TrimSpace(article.SiteName),
		Tags:    metaKeywords(html),
	}, nil
}

// metaKeywords 读取 <meta name="keywords"> 作为候选标签
func metaKeywords(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	raw, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content")
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0, maxTags)
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		tags = append(tags, kw)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

func normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRegex.ReplaceAllString(l, " "))
	}
	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
