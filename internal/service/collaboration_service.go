package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/mutation"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	"errors"
	"strconv"
	"strings"
)

type CollaborationService interface {
	RequestCollaboration(ctx context.Context, requesterID uint64, req *dto.CollaborationReq) (*dto.CollaborationDTO, error)
	ListIncoming(ctx context.Context, ownerID uint64, status string, page, pageSize int) ([]*dto.CollaborationDTO, error)
	ListOutgoing(ctx context.Context, requesterID uint64, page, pageSize int) ([]*dto.CollaborationDTO, error)
	AcceptRequest(ctx context.Context, ownerID, requestID uint64) (*dto.CollaborationDTO, error)
	RejectRequest(ctx context.Context, ownerID, requestID uint64) (*dto.CollaborationDTO, error)
}

type collaborationServiceImpl struct {
	collabRepo  repository.CollaborationRepo
	postRepo    repository.PostRepo
	profileRepo repository.ProfileRepo
	runner      *mutation.Runner
	publisher   *feed.Publisher
}

func NewCollaborationService(
	collabRepo repository.CollaborationRepo,
	postRepo repository.PostRepo,
	profileRepo repository.ProfileRepo,
	runner *mutation.Runner,
	publisher *feed.Publisher,
) CollaborationService {
	return &collaborationServiceImpl{
		collabRepo:  collabRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
		runner:      runner,
		publisher:   publisher,
	}
}

// RequestCollaboration 同一用户对同一帖子最多一条待处理申请
func (s *collaborationServiceImpl) RequestCollaboration(ctx context.Context, requesterID uint64, req *dto.CollaborationReq) (*dto.CollaborationDTO, error) {
	if requesterID == 0 {
		return nil, ErrAuthRequired
	}
	post, err := s.postRepo.GetPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID == requesterID {
		return nil, ErrCollabSelf
	}
	pending, err := s.collabRepo.HasPending(ctx, requesterID, post.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrCollabPending
	}

	record := &model.CollaborationRequest{
		RequesterID: requesterID,
		OwnerID:     post.UserID,
		PostID:      post.ID,
		Message:     strings.TrimSpace(req.Message),
		Status:      consts.CollabPending,
	}
	return mutation.Run(ctx, s.runner, mutation.Mutation[*dto.CollaborationDTO]{
		Name: "request_collaboration",
		Commit: func(ctx context.Context) (*dto.CollaborationDTO, error) {
			if err := s.collabRepo.CreateRequest(ctx, record); err != nil {
				// 并发的重复申请由唯一索引拦截
				if errors.Is(err, repository.ErrDuplicate) {
					return nil, ErrCollabPending
				}
				return nil, err
			}
			record.Post = *post
			return toCollaborationDTO(record), nil
		},
		Invalidate: []string{collabIncomingKey(post.UserID)},
		OnSuccess: func(ctx context.Context, _ *dto.CollaborationDTO) {
			s.publisher.Publish(ctx, feed.Insert, feed.TableCollabRequests, record, nil)
		},
	})
}

func (s *collaborationServiceImpl) ListIncoming(ctx context.Context, ownerID uint64, status string, page, pageSize int) ([]*dto.CollaborationDTO, error) {
	if ownerID == 0 {
		return nil, ErrAuthRequired
	}
	switch status {
	case "", consts.CollabPending, consts.CollabAccepted, consts.CollabRejected:
	default:
		return nil, ErrParamInvalid
	}
	limit, offset := util.Paginate(page, pageSize, 50)
	reqs, err := s.collabRepo.ListIncoming(ctx, ownerID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withRequesters(ctx, reqs)
}

func (s *collaborationServiceImpl) ListOutgoing(ctx context.Context, requesterID uint64, page, pageSize int) ([]*dto.CollaborationDTO, error) {
	if requesterID == 0 {
		return nil, ErrAuthRequired
	}
	limit, offset := util.Paginate(page, pageSize, 50)
	reqs, err := s.collabRepo.ListOutgoing(ctx, requesterID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withRequesters(ctx, reqs)
}

func (s *collaborationServiceImpl) AcceptRequest(ctx context.Context, ownerID, requestID uint64) (*dto.CollaborationDTO, error) {
	return s.finalize(ctx, ownerID, requestID, consts.CollabAccepted)
}

func (s *collaborationServiceImpl) RejectRequest(ctx context.Context, ownerID, requestID uint64) (*dto.CollaborationDTO, error) {
	return s.finalize(ctx, ownerID, requestID, consts.CollabRejected)
}

// finalize 条件更新保证状态不会回到 pending，已处理的申请返回冲突
func (s *collaborationServiceImpl) finalize(ctx context.Context, ownerID, requestID uint64, status string) (*dto.CollaborationDTO, error) {
	if ownerID == 0 {
		return nil, ErrAuthRequired
	}
	req, err := s.collabRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.OwnerID != ownerID {
		return nil, ErrCollabNotFound
	}
	if req.Status != consts.CollabPending {
		return nil, ErrCollabProcessed
	}

	return mutation.Run(ctx, s.runner, mutation.Mutation[*dto.CollaborationDTO]{
		Name: "finalize_collaboration",
		Commit: func(ctx context.Context) (*dto.CollaborationDTO, error) {
			affected, err := s.collabRepo.FinalizeRequest(ctx, requestID, ownerID, status)
			if err != nil {
				return nil, err
			}
			if affected == 0 {
				return nil, ErrCollabProcessed
			}
			req.Status = status
			return toCollaborationDTO(req), nil
		},
		Invalidate: []string{collabIncomingKey(ownerID)},
		OnSuccess: func(ctx context.Context, _ *dto.CollaborationDTO) {
			old := *req
			old.Status = consts.CollabPending
			s.publisher.Publish(ctx, feed.Update, feed.TableCollabRequests, req, &old)
		},
	})
}

func (s *collaborationServiceImpl) withRequesters(ctx context.Context, reqs []*model.CollaborationRequest) ([]*dto.CollaborationDTO, error) {
	ids := make([]uint64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.RequesterID)
	}
	profiles, err := s.profileRepo.GetProfilesByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CollaborationDTO, 0, len(reqs))
	for _, r := range reqs {
		item := toCollaborationDTO(r)
		item.Requester = toAuthorDTO(profiles[r.RequesterID])
		out = append(out, item)
	}
	return out, nil
}

func collabIncomingKey(ownerID uint64) string {
	return consts.CollabIncomingKey + strconv.FormatUint(ownerID, 10)
}
