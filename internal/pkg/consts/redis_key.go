package consts

const (
	PostLikeKey       = "post:like:"
	PostCommentKey    = "post:comment:"
	PostDetailKey     = "post:detail:"
	IdeaLikeKey       = "idea:like:"
	IdeaCommentKey    = "idea:comment:"
	IdeaDetailKey     = "idea:detail:"
	PostDirtyKey      = "post:dirty"
	IdeaDirtyKey      = "idea:dirty"
	FavoriteListKey   = "favorite:list:"
	MembershipKey     = "membership:"
	SettingsKey       = "settings:"
	ProfileKey        = "profile:"
	InboxKey          = "inbox:"
	CollabIncomingKey = "collab:incoming:"
	TokenBlacklistKey = "token:blacklist:"
)

const (
	SeedLock        = "lock:seed:channels"
	CheckoutLock    = "lock:checkout:"
	CounterSyncLock = "lock:job:counter_sync"
)
