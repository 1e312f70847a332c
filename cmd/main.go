// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"territory-engine/internal/api"
	"territory-engine/internal/catalog"
	"territory-engine/internal/district"
	"territory-engine/internal/engine"
	"territory-engine/internal/logger"
	"territory-engine/internal/metrics"
	"territory-engine/internal/middleware"
	"territory-engine/internal/migrate"
	"territory-engine/internal/mode"
	"territory-engine/internal/projection"
	"territory-engine/internal/store"
	"territory-engine/internal/utils"

	"github.com/joho/godotenv"
)

const defaultDistrictURL = "https://data.sfgov.org/resource/f2zs-jevy.geojson"

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envSeconds(key string, def int) time.Duration {
	n := def
	if s := os.Getenv(key); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v >= 0 {
			n = v
		}
	}
	return time.Duration(n) * time.Second
}

func envFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, e := strconv.ParseFloat(s, 64); e == nil {
			return v
		}
	}
	return def
}

// 文档注释：加载地标目录
// 背景：裁剪框与默认视图总是来自内置文件；CATALOG_SOURCE=postgres 时目录列表改由数据库提供。
// 约束：数据库不可用或没有任何目录时回退内置目录，不阻止启动。
func loadCatalogs(ctx context.Context, l *slog.Logger) *catalog.File {
	f, err := catalog.Builtin()
	if err != nil {
		l.Error("catalog_builtin_error", "err", err)
		os.Exit(1)
	}
	if os.Getenv("CATALOG_SOURCE") != "postgres" {
		l.Info("catalog_source", "source", "builtin", "catalogs", len(f.Catalogs))
		return f
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		return f
	}
	st := store.AttachDB(db)
	defer st.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		return f
	}
	l.Info("db_ping_ok")
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		return f
	}
	cs, err := st.LoadCatalogs(ctx)
	if err != nil {
		l.Error("catalog_db_error", "err", err)
		return f
	}
	if len(cs) == 0 {
		l.Warn("catalog_db_empty", "fallback", "builtin")
		return f
	}
	f.Catalogs = cs
	l.Info("catalog_source", "source", "postgres", "catalogs", len(cs))
	return f
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := envOr("API_BASE", "/api")
	l.Debug("config_api_base", "base", apiBase)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := loadCatalogs(ctx, l)

	rc := utils.OpenRedisFromEnv()
	if rc != nil {
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	// 行政区数据异步拉取；未就绪前行政区模式只显示空集合
	client := &http.Client{Timeout: envSeconds("DISTRICT_FETCH_TIMEOUT_S", 20)}
	src := district.NewSource(envOr("DISTRICT_URL", defaultDistrictURL), client, rc, envSeconds("DISTRICT_CACHE_TTL_S", 86400))

	view := projection.Viewport{
		Center: f.DefaultView.GeoPoint,
		Zoom:   f.DefaultView.Zoom,
		Width:  envFloat("VIEW_WIDTH", 0),
		Height: envFloat("VIEW_HEIGHT", 0),
	}
	eng := engine.New(engine.Config{Bounds: f.Bounds, Modes: mode.FromCatalogs(f.Catalogs), View: view}, src)
	src.Start(ctx)

	hub := api.NewHub()
	detach := hub.Attach(eng)
	defer detach()

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(eng, src, hub)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	addr := envOr("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := envOr("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
		keyPath := envOr("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "territory.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		if err := s.ListenAndServeTLS(certPath, keyPath); err != nil {
			l.Error("server_error", "err", err)
		}
		return
	}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
	}
}
