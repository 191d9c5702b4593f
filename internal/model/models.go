package model

// All 参与自动迁移的模型
func All() []any {
	return []any{
		&User{}, &Profile{}, &Settings{}, &Membership{},
		&Folder{}, &Idea{}, &IdeaLike{}, &IdeaComment{},
		&CommunityPost{}, &PostLike{}, &PostComment{},
		&Favorite{}, &Message{}, &CollaborationRequest{},
	}
}
