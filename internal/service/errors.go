package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	PaymentRequired     = 402
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrAuthRequired        = errors.New("authentication required")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrUserBan             = errors.New("用户已被封禁")
	ErrUserExist           = errors.New("user already exists")
	ErrUserUsernameExist   = errors.New("username already exists")
	ErrPasswordIncorrect   = errors.New("密码错误")
	ErrCurrentPassword     = errors.New("current password required")
	ErrFileNotSupported    = errors.New("不支持的文件类型")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrThemeInvalid        = errors.New("theme must be light, dark or system")
	ErrIdeaNotFound        = errors.New("idea not found")
	ErrIdeaNotInTrash      = errors.New("idea is not in trash")
	ErrIdeaAlreadyShared   = errors.New("idea already shared")
	ErrChannelRequired     = errors.New("channel is required when sharing to community")
	ErrChannelInvalid      = errors.New("unknown channel")
	ErrFolderNotFound      = errors.New("folder not found")
	ErrImportFailed        = errors.New("failed to import page")
	ErrPostNotFound        = errors.New("帖子不存在")
	ErrPostCommentNotFound = errors.New("评论不存在")
	ErrActionDuplicate     = errors.New("重复操作")
	ErrTargetInvalid       = errors.New("unsupported target type")
	ErrMessageNotFound     = errors.New("message not found")
	ErrThreadNotFound      = errors.New("thread not found")
	ErrRecipientInvalid    = errors.New("recipient invalid")
	ErrCollabNotFound      = errors.New("collaboration request not found")
	ErrCollabSelf          = errors.New("cannot request collaboration on your own post")
	ErrCollabPending       = errors.New("a pending request already exists")
	ErrCollabProcessed     = errors.New("already processed")
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrProRequired         = errors.New("pro membership required")
	ErrCheckoutFailed      = errors.New("checkout failed")
	ErrWebhookSecret       = errors.New("invalid webhook secret")
	ErrSeedRunning         = errors.New("channel population already running")
	ErrSysBoxNotFound      = errors.New("系统通知不存在")
	UnauthorizedError      = errors.New("权限不足")
	ErrUnexpected          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrAuthRequired:        Unauthorized,
	ErrUserNotFound:        NotFound,
	ErrUserBan:             Unauthorized,
	ErrUserExist:           BadRequest,
	ErrUserUsernameExist:   BadRequest,
	ErrPasswordIncorrect:   Unauthorized,
	ErrCurrentPassword:     BadRequest,
	ErrFileNotSupported:    BadRequest,
	ErrProfileNotFound:     NotFound,
	ErrThemeInvalid:        BadRequest,
	ErrIdeaNotFound:        NotFound,
	ErrIdeaNotInTrash:      BadRequest,
	ErrIdeaAlreadyShared:   BadRequest,
	ErrChannelRequired:     BadRequest,
	ErrChannelInvalid:      BadRequest,
	ErrFolderNotFound:      NotFound,
	ErrImportFailed:        BadRequest,
	ErrPostNotFound:        NotFound,
	ErrPostCommentNotFound: NotFound,
	ErrActionDuplicate:     BadRequest,
	ErrTargetInvalid:       BadRequest,
	ErrMessageNotFound:     NotFound,
	ErrThreadNotFound:      NotFound,
	ErrRecipientInvalid:    BadRequest,
	ErrCollabNotFound:      NotFound,
	ErrCollabSelf:          BadRequest,
	ErrCollabPending:       BadRequest,
	ErrCollabProcessed:     Conflict,
	ErrMembershipNotFound:  NotFound,
	ErrProRequired:         PaymentRequired,
	ErrCheckoutFailed:      InternalServerError,
	ErrWebhookSecret:       Unauthorized,
	ErrSeedRunning:         Conflict,
	ErrSysBoxNotFound:      NotFound,
	UnauthorizedError:      Forbidden,
	ErrUnexpected:          InternalServerError,
}
