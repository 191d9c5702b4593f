package consts

const (
	MimePrefixImage = "image"
)

// 点赞/评论/收藏的目标类型
const (
	TargetPost = "post"
	TargetIdea = "idea"
)

// Favorite.ItemType 取值
const (
	ItemTypeIdea          = "idea"
	ItemTypeCommunityPost = "community_post"
)

// 会员
const (
	TierFree = "free"
	TierPro  = "pro"

	MembershipPending   = "pending"
	MembershipActive    = "active"
	MembershipCancelled = "cancelled"
	MembershipExpired   = "expired"
	MembershipFailed    = "failed" // 支付失败的待支付记录
)

// 协作申请状态
const (
	CollabPending  = "pending"
	CollabAccepted = "accepted"
	CollabRejected = "rejected"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
	RoleBot   = "BOT"
)

const (
	DefaultAvatarURL = "default_avatar.png"
	AvatarSize       = 512
)

// Channels 社区固定频道
var Channels = []string{"general", "technology", "design", "business", "science", "art", "writing", "productivity"}

// IsChannel 判断频道是否存在
func IsChannel(name string) bool {
	for _, c := range Channels {
		if c == name {
			return true
		}
	}
	return false
}
