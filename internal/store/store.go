package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Kejsan/makina-ime/pkg/migration"
)

// ドライバー名。
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// ErrNotFound は対象の行が存在しない、または呼び出し元のユーザーに属さないことを表す。
var ErrNotFound = errors.New("対象が見つかりません")

//go:embed migrations
var migrationsFS embed.FS

// Store はデータベース接続を保持し、各エンティティの読み書きを提供する。
type Store struct {
	// db はsqlxでラップしたデータベース接続。
	db *sqlx.DB
	// driver はdatabase/sqlドライバー名。
	driver string
	// now は作成日時の採番に使う時計。
	now func() time.Time
	// logger はストア用のロガー。
	logger *zap.Logger
}

// Open はデータベースに接続し、未適用のマイグレーションを適用したStoreを返す。
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("未対応のドライバーです: %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if driver == DriverSQLite {
		// SQLiteは書き込みを直列化する
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}

	s := &Store{
		db:     db,
		driver: driver,
		now:    time.Now,
		logger: logger,
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate はドライバーに対応するマイグレーションを適用する。
func (s *Store) migrate(ctx context.Context) error {
	dir := "migrations/sqlite"
	if s.driver == DriverPostgres {
		dir = "migrations/postgres"
	}
	if err := migration.Run(ctx, s.db, migrationsFS, dir, s.logger); err != nil {
		return fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return nil
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

// timestamp は作成日時としてDBに保存する現在時刻を返す。
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// rowsAffected は更新件数が0の場合にErrNotFoundを返す。
func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
