package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// TestNew はロガー生成を検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("指定したレベルが反映されること", func(t *testing.T) {
		t.Parallel()

		logger, err := New("warn", false)
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Error("warnレベルでinfoが有効になっている")
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Error("warnレベルでerrorが無効になっている")
		}
	})

	t.Run("開発モードでも生成できること", func(t *testing.T) {
		t.Parallel()

		logger, err := New("debug", true)
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("debugレベルが無効になっている")
		}
	})

	t.Run("不正なレベルはエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := New("verbose", false); err == nil {
			t.Fatal("不正なレベルでエラーが返らなかった")
		}
	})
}
