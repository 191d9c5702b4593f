package es

import (
	"context"
	"errors"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

const MaxSearchDepth = 400

type PostRepo interface {
	SearchPosts(ctx context.Context, keyword, channel string, from, size int) ([]*PostES, error)
	IndexPost(ctx context.Context, post *PostES, version int64) error
	DeletePost(ctx context.Context, id uint64) error
}

type PostRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewPostRepo(client *elasticsearch.TypedClient) PostRepo {
	return &PostRepoImpl{client: client}
}

func (s *PostRepoImpl) SearchPosts(ctx context.Context, keyword, channel string, from, size int) ([]*PostES, error) {
	if from >= MaxSearchDepth {
		return []*PostES{}, nil
	}

	boolQuery := &types.BoolQuery{
		Must: []types.Query{{
			MultiMatch: &types.MultiMatchQuery{
				Query:  keyword,
				Fields: []string{"title^3", "content", "tags^2"},
			},
		}},
	}
	if channel != "" {
		boolQuery.Filter = []types.Query{{
			Term: map[string]types.TermQuery{
				"channel": {Value: channel},
			},
		}}
	}

	req := s.client.Search().
		Index(PostIndex).
		Query(&types.Query{Bool: boolQuery}).
		Sort(
			types.SortOptions{SortOptions: map[string]types.FieldSort{"_score": {Order: &sortorder.Desc}}},
			types.SortOptions{SortOptions: map[string]types.FieldSort{"created_at": {Order: &sortorder.Desc}}},
		).
		From(from).
		Size(size)

	return s.executeSearch(ctx, req)
}

// IndexPost 使用外部版本号写入，旧版本的写入会被忽略
func (s *PostRepoImpl) IndexPost(ctx context.Context, post *PostES, version int64) error {
	docID := strconv.FormatUint(post.ID, 10)

	_, err := s.client.Index(PostIndex).
		Id(docID).
		Document(post).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == ConflictCode {
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	docID := strconv.FormatUint(id, 10)

	_, err := s.client.Delete(PostIndex, docID).Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *PostRepoImpl) executeSearch(ctx context.Context, req *search.Search) ([]*PostES, error) {
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*PostES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var post PostES
		if err = json.Unmarshal(hit.Source_, &post); err != nil {
			continue
		}
		results = append(results, &post)
	}
	return results, nil
}
