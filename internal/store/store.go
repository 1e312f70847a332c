// 包 store: 提供与 PostgreSQL 的数据访问层，读写地标目录
package store

import (
	"context"
	"database/sql"
	"fmt"

	"territory-engine/internal/catalog"
	"territory-engine/internal/geo"
	"territory-engine/internal/logger"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池并提供目录读写接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// 文档注释：读取全部地标目录
// 背景：CATALOG_SOURCE=postgres 时替代内置目录；目录按 position、地标按目录内 position 排序。
// 返回：没有地标的目录同样返回（空格子集合）；任一目录校验失败时整体失败。
func (s *Store) LoadCatalogs(ctx context.Context) ([]catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, label FROM _landmark_catalogs ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	var out []catalog.Catalog
	for rows.Next() {
		var c catalog.Catalog
		if err := rows.Scan(&c.ID, &c.Label); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lms, err := s.Landmarks(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Landmarks = lms
		if err := catalog.Validate(out[i]); err != nil {
			return nil, err
		}
	}
	logger.L().Debug("db_catalogs_loaded", "count", len(out))
	return out, nil
}

// Landmarks: 读取单个目录的地标（按 position）
func (s *Store) Landmarks(ctx context.Context, catalogID string) ([]geo.Landmark, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, lng, lat FROM _landmarks WHERE catalog_id=$1 ORDER BY position`, catalogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []geo.Landmark
	for rows.Next() {
		var lm geo.Landmark
		if err := rows.Scan(&lm.Name, &lm.Longitude, &lm.Latitude); err != nil {
			return nil, err
		}
		out = append(out, lm)
	}
	return out, rows.Err()
}

// UpsertCatalog: 写入或更新目录标签与排序
func (s *Store) UpsertCatalog(ctx context.Context, id, label string, position int) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO _landmark_catalogs(id, label, position) VALUES($1,$2,$3)
        ON CONFLICT (id) DO UPDATE SET label=EXCLUDED.label, position=EXCLUDED.position`, id, label, position)
	return err
}

// 文档注释：整体替换目录中的地标
// 背景：导入是目录级别的快照；在单个事务中先删后插，读取方不会看到半个目录。
// 约束：地标顺序即写入的 position。
func (s *Store) ReplaceLandmarks(ctx context.Context, catalogID string, lms []geo.Landmark) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM _landmarks WHERE catalog_id=$1`, catalogID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _landmarks(catalog_id, name, lng, lat, position) VALUES($1,$2,$3,$4,$5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, lm := range lms {
		if _, err := stmt.ExecContext(ctx, catalogID, lm.Name, lm.Longitude, lm.Latitude, i); err != nil {
			return fmt.Errorf("insert landmark %q: %w", lm.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("db_landmarks_replaced", "catalog", catalogID, "count", len(lms))
	return nil
}
