// Package logging はサービス共通のzapロガーを構築する。
//
// ロガーはmainで1度だけ生成し、各コンポーネントへ明示的に渡す。
// パッケージ変数としてのグローバルロガーは持たない。
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New は指定レベルのzapロガーを生成する。
// developmentがtrueの場合は人間が読みやすいコンソール形式、falseの場合はJSON形式で出力する。
func New(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("ログレベルの解析に失敗: %w", err)
	}
	cfg.Level = lvl

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ロガーの構築に失敗: %w", err)
	}
	return logger, nil
}
