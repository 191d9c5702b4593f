package service

import (
	"IdeaVault/internal/api/dto"
	"context"
	"path"
	"strings"
)

type accessLevel int

const (
	accessPublic accessLevel = iota
	accessAuth
	accessPro
)

const (
	RedirectLogin   = "/login"
	RedirectPricing = "/pricing"
)

// routeAccess 页面访问级别，子路径继承父路径
var routeAccess = map[string]accessLevel{
	"/":              accessPublic,
	"/login":         accessPublic,
	"/signup":        accessPublic,
	"/pricing":       accessPublic,
	"/about":         accessPublic,
	"/features":      accessPublic,
	"/announcements": accessPublic,
	"/dashboard":     accessAuth,
	"/settings":      accessAuth,
	"/onboarding":    accessAuth,
	"/profile":       accessPro,
	"/community":     accessPro,
	"/inbox":         accessPro,
}

// ProChecker 判断用户是否为 pro 会员
type ProChecker interface {
	IsPro(ctx context.Context, userID uint64) (bool, error)
}

type RouteService interface {
	ResolveRoute(ctx context.Context, rawPath string, userID uint64) (*dto.RouteDTO, error)
}

type routeServiceImpl struct {
	pro ProChecker
}

func NewRouteService(pro ProChecker) RouteService {
	return &routeServiceImpl{pro: pro}
}

// ResolveRoute 未登录跳转 /login，非 pro 跳转 /pricing；未登记的路径按需要登录处理
func (s *routeServiceImpl) ResolveRoute(ctx context.Context, rawPath string, userID uint64) (*dto.RouteDTO, error) {
	p := normalizePath(rawPath)
	res := &dto.RouteDTO{Path: p, Allowed: true}

	level := lookupAccess(p)
	if level == accessPublic {
		return res, nil
	}
	if userID == 0 {
		res.Allowed = false
		res.Redirect = RedirectLogin
		return res, nil
	}
	if level == accessAuth {
		return res, nil
	}

	pro, err := s.pro.IsPro(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !pro {
		res.Allowed = false
		res.Redirect = RedirectPricing
	}
	return res, nil
}

func normalizePath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return path.Clean(raw)
}

func lookupAccess(p string) accessLevel {
	if p == "/" {
		return accessPublic
	}
	for p != "/" {
		if level, ok := routeAccess[p]; ok {
			return level
		}
		p = path.Dir(p)
	}
	return accessAuth
}
