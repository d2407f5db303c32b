// Package lock はRedisを使ったスイープの重複実行防止ロックを提供する。
//
// 複数のワーカーを同時に動かす構成でのみ使う。既定では無効。
package lock
