// 包 migrate：地标目录表结构
package migrate

import (
	"context"
	"database/sql"

	"territory-engine/internal/logger"
)

// 背景：首次运行自动创建目录表与索引，保障导入工具与主服务读取
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；position 保存目录内顺序（即格子顺序）
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _landmark_catalogs (
            id TEXT PRIMARY KEY,
            label TEXT NOT NULL,
            position INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _landmarks (
            catalog_id TEXT NOT NULL REFERENCES _landmark_catalogs(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            lng DOUBLE PRECISION NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            position INT NOT NULL,
            PRIMARY KEY (catalog_id, name)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_landmarks_catalog_pos ON _landmarks(catalog_id, position)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
