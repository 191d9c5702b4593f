package dto

import "time"

// SignUpDTO 邮箱注册
type SignUpDTO struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Username string `json:"username" binding:"required,min=3,max=30"`
}

// SignInDTO 邮箱登录
type SignInDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenDTO 登录结果
type TokenDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *UserDTO  `json:"user"`
}

// UserDTO 当前登录用户
type UserDTO struct {
	ID        uint64      `json:"id"`
	Email     string      `json:"email"`
	Roles     []string    `json:"roles"`
	CreatedAt time.Time   `json:"created_at"`
	Profile   *ProfileDTO `json:"profile,omitempty"`
}

// UpdateUserDTO 修改邮箱或密码，修改密码需要当前密码
type UpdateUserDTO struct {
	Email           *string `json:"email" binding:"omitempty,email,max=255"`
	Password        *string `json:"password" binding:"omitempty,min=6,max=72"`
	CurrentPassword *string `json:"current_password"`
}
