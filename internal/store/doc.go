// Package store はリマインダー、ユーザー、アプリ内通知の永続化を担う。
//
// database/sql ドライバーとして modernc.org/sqlite（組み込み）または
// pgx（PostgreSQL）を使い、クエリは sqlx の Rebind で各方言のプレースホルダに変換する。
// スキーマは方言ごとの埋め込みマイグレーションで管理する。
package store
