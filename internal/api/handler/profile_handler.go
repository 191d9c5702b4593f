package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/service"
	"io"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileSvc service.ProfileService
}

func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

func (s *ProfileHandler) GetMyProfile(c *gin.Context) {
	profile, err := s.profileSvc.GetProfile(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

func (s *ProfileHandler) GetProfileByUsername(c *gin.Context) {
	profile, err := s.profileSvc.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

func (s *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := s.profileSvc.UpdateProfile(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// UploadAvatar multipart 字段 file
func (s *ProfileHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if file.Size > util.MaxAvatarBytes {
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	// 以文件头嗅探类型，不信任客户端声明
	head := make([]byte, 512)
	n, _ := reader.Read(head)
	contentType := http.DetectContentType(head[:n])
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		response.Error(c, err)
		return
	}
	log.InfoContext(c.Request.Context(), "avatar upload", "contentType", contentType, "size", file.Size)

	avatar, err := s.profileSvc.UploadAvatar(c.Request.Context(), c.GetUint64("user_id"), contentType, reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, avatar)
}

func (s *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	if err := s.profileSvc.CompleteOnboarding(c.Request.Context(), c.GetUint64("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ProfileHandler) CompleteTutorial(c *gin.Context) {
	if err := s.profileSvc.CompleteTutorial(c.Request.Context(), c.GetUint64("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
