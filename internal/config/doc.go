// Package config はmakina-api とreminder-sweep の設定を読み込む。
//
// 設定はデフォルト値、YAMLファイル、環境変数の順に重ねて読み込む。
// 環境変数は MAKINA_ 接頭辞を持ち、階層の区切りには "__" を使う
// （例: MAKINA_SWEEP__LOCK__REDIS_URL → sweep.lock.redis_url）。
// 旧デプロイとの互換のため BREVO_API_KEY, JWT_SECRET, PORT, DATABASE_URL も受け付ける。
package config
