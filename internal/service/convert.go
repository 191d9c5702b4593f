package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/minio"
	"IdeaVault/internal/repository"
	"time"

	"github.com/jinzhu/copier"
)

func toUserDTO(user *model.User) *dto.UserDTO {
	out := &dto.UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Roles:     []string(user.Roles),
		CreatedAt: user.CreatedAt,
	}
	if user.Profile.UserID != 0 {
		out.Profile = toProfileDTO(&user.Profile)
	}
	return out
}

func toProfileDTO(p *model.Profile) *dto.ProfileDTO {
	out := &dto.ProfileDTO{}
	_ = copier.Copy(out, p)
	out.AvatarURL = avatarURL(p.AvatarURL)
	return out
}

func toAuthorDTO(p *model.Profile) *dto.AuthorDTO {
	if p == nil || p.UserID == 0 {
		return nil
	}
	return &dto.AuthorDTO{
		UserID:    p.UserID,
		Username:  p.Username,
		AvatarURL: avatarURL(p.AvatarURL),
		IsBot:     p.IsBot,
	}
}

func avatarURL(objectName string) string {
	if objectName == "" {
		objectName = consts.DefaultAvatarURL
	}
	return minio.GetPublicURL(objectName)
}

func toSettingsDTO(st *model.Settings) *dto.SettingsDTO {
	out := &dto.SettingsDTO{}
	_ = copier.Copy(out, st)
	return out
}

func toIdeaDTO(idea *model.Idea) *dto.IdeaDTO {
	out := &dto.IdeaDTO{}
	_ = copier.Copy(out, idea)
	out.Tags = tagsOrEmpty(idea.Tags)
	return out
}

func toIdeaDTOs(ideas []*model.Idea) []*dto.IdeaDTO {
	out := make([]*dto.IdeaDTO, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, toIdeaDTO(idea))
	}
	return out
}

func toPostDTO(post *model.CommunityPost) *dto.PostDTO {
	out := &dto.PostDTO{}
	_ = copier.Copy(out, post)
	out.Tags = tagsOrEmpty(post.Tags)
	out.Author = toAuthorDTO(&post.Author)
	return out
}

func toFolderDTO(f *model.Folder) *dto.FolderDTO {
	return &dto.FolderDTO{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}
}

func toCommentDTO(c *repository.Comment) *dto.CommentDTO {
	return &dto.CommentDTO{
		ID:        c.ID,
		TargetID:  c.TargetID,
		UserID:    c.UserID,
		Content:   c.Content,
		Author:    toAuthorDTO(c.Author),
		CreatedAt: c.CreatedAt,
	}
}

func toMessageDTO(m *model.Message) *dto.MessageDTO {
	out := &dto.MessageDTO{}
	_ = copier.Copy(out, m)
	return out
}

func toCollaborationDTO(r *model.CollaborationRequest) *dto.CollaborationDTO {
	out := &dto.CollaborationDTO{}
	_ = copier.Copy(out, r)
	out.PostTitle = r.Post.Title
	return out
}

func toMembershipDTO(m *model.Membership, now time.Time) *dto.MembershipDTO {
	out := &dto.MembershipDTO{}
	_ = copier.Copy(out, m)
	out.IsPro = isProMembership(m, now)
	return out
}

func tagsOrEmpty(tags model.Tags) []string {
	if tags == nil {
		return []string{}
	}
	return []string(tags)
}

// isProMembership 付费档位且生效中，或已取消但付费周期未结束
func isProMembership(m *model.Membership, now time.Time) bool {
	if m == nil || m.Tier != consts.TierPro {
		return false
	}
	switch m.Status {
	case consts.MembershipActive:
		return m.EndsAt == nil || m.EndsAt.After(now)
	case consts.MembershipCancelled:
		return m.EndsAt != nil && m.EndsAt.After(now)
	default:
		return false
	}
}
