// Package httpclient は外部HTTP APIをJSONで呼び出すための薄いクライアントを提供する。
//
// 固定ヘッダー（APIキーなど）とタイムアウトをクライアント単位で設定し、
// 2xx以外の応答はStatusErrorとして返す。メール配信APIの呼び出しに使用する。
package httpclient
