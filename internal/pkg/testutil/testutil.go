// Package testutil 测试用的内存数据库与 Redis。
package testutil

import (
	"IdeaVault/internal/pkg/database"
	"IdeaVault/internal/pkg/redis"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB 每个测试独立的内存 sqlite，已完成迁移
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ideavault_%d?mode=memory&cache=shared", dbSeq.Add(1))
	dialector := sqlite.Open(dsn)
	db, err := gorm.Open(dialector, database.Options(dialector.Name()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// NewRedis 启动 miniredis 并替换全局客户端
func NewRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redis.Use(client)
	return mr
}
