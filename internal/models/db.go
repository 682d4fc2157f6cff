package models

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局数据库连接，由 InitDB 赋值
var DB *gorm.DB

// ErrDBNotInitialized 数据库尚未初始化
var ErrDBNotInitialized = errors.New("database not initialized")

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	sqliteBusyTimeoutMS = 5000
	slowQueryThreshold  = 500 * time.Millisecond
)

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

func normalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return driverSQLite, nil
	case "postgres", "postgresql", "pg":
		return driverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// OpenDialector 根据驱动名称构建 gorm 方言；sqlite 文件库会补齐目录与 pragma
func OpenDialector(driver, dsn string) (gorm.Dialector, error) {
	name, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	if name == driverPostgres {
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		return postgres.Open(dsn), nil
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return nil, err
	}
	return sqlite.Open(withSQLitePragmas(dsn)), nil
}

// isSQLiteMemory 内存库无需建目录，也不开启 WAL
func isSQLiteMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	return path
}

func ensureSQLiteDir(dsn string) error {
	if isSQLiteMemory(dsn) {
		return nil
	}
	dir := filepath.Dir(sqliteFilePath(dsn))
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite dir failed: %w", err)
	}
	return nil
}

// withSQLitePragmas 为未显式设置 pragma 的文件库追加 busy_timeout 与 WAL
func withSQLitePragmas(dsn string) string {
	if isSQLiteMemory(dsn) || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", dsn, sep, sqliteBusyTimeoutMS)
}

// Open 打开连接并应用连接池配置，不修改全局 DB
func Open(driver, dsn string, pool DBPoolConfig, debug bool) (*gorm.DB, error) {
	dialector, err := OpenDialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(gormLogWriter{}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	applyDBPool(sqlDB, pool)
	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(driver, dsn string, pool DBPoolConfig, debug bool) error {
	db, err := Open(driver, dsn, pool, debug)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// CloseDB 关闭全局数据库连接，可重复调用
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	DB = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}

// AutoMigrate 迁移商品与购物车快照表
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		db = DB
	}
	if db == nil {
		return ErrDBNotInitialized
	}
	return db.AutoMigrate(
		&Product{},
		&CartSnapshot{},
	)
}
