package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"strings"
	"time"

	"territory-engine/internal/catalog"
	"territory-engine/internal/logger"
	"territory-engine/internal/migrate"
	"territory-engine/internal/store"
	"territory-engine/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：地标目录导入工具
// 背景：把 CSV（纬度/经度列大小写不敏感，名称列取 name|title|location|place 中第一个存在的）
// 整体写入 Postgres 目录表；-builtin 时改为把内置目录全部写入，用于初始化数据库。
// 约束：无效行跳过并计数；目录校验失败（重名、空名）时不写库；每个目录在单事务内替换。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	csvPath := flag.String("csv", os.Getenv("CATALOG_CSV"), "CSV file to import")
	id := flag.String("catalog", os.Getenv("CATALOG_ID"), "catalog id")
	label := flag.String("label", os.Getenv("CATALOG_LABEL"), "catalog label (defaults to id)")
	position := flag.Int("position", 0, "catalog order in the mode list")
	builtin := flag.Bool("builtin", false, "seed all builtin catalogs instead of reading a CSV")
	dsn := flag.String("dsn", "", "postgres DSN (defaults to PG_* environment)")
	flag.Parse()

	var cats []catalog.Catalog
	if *builtin {
		f, err := catalog.Builtin()
		if err != nil {
			l.Error("catalog_builtin_error", "err", err)
			os.Exit(1)
		}
		cats = f.Catalogs
	} else {
		if *csvPath == "" || strings.TrimSpace(*id) == "" {
			l.Error("catalog_import_usage", "hint", "-csv file -catalog id [-label text]")
			os.Exit(2)
		}
		fh, err := os.Open(*csvPath)
		if err != nil {
			l.Error("csv_open_error", "err", err)
			os.Exit(1)
		}
		lms, skipped, err := catalog.ReadCSV(fh)
		fh.Close()
		if err != nil {
			l.Error("csv_read_error", "err", err)
			os.Exit(1)
		}
		l.Info("csv_read_ok", "rows", len(lms), "skipped", skipped)
		lb := *label
		if lb == "" {
			lb = *id
		}
		cats = []catalog.Catalog{{ID: *id, Label: lb, Landmarks: lms}}
	}
	for _, c := range cats {
		if err := catalog.Validate(c); err != nil {
			l.Error("catalog_invalid", "err", err)
			os.Exit(1)
		}
	}

	var db *sql.DB
	var err error
	if *dsn != "" {
		db, err = utils.OpenPostgres(*dsn)
	} else {
		db, err = utils.OpenPostgresFromEnv()
	}
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	for i, c := range cats {
		pos := *position
		if *builtin {
			pos = i
		}
		if err := st.UpsertCatalog(ctx, c.ID, c.Label, pos); err != nil {
			l.Error("catalog_upsert_error", "catalog", c.ID, "err", err)
			os.Exit(1)
		}
		if err := st.ReplaceLandmarks(ctx, c.ID, c.Landmarks); err != nil {
			l.Error("catalog_landmarks_error", "catalog", c.ID, "err", err)
			os.Exit(1)
		}
	}
	l.Info("catalog_import_done", "catalogs", len(cats))
}
