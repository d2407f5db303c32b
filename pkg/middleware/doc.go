// Package middleware はmakina-api のGin ルーターで使用する共通ミドルウェアを提供する。
//
// JWT認証トークンの検証、zapによるリクエストログ、パニックリカバリ、
// CORS設定を含む。
package middleware
