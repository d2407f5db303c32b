// Package notification はmakina-apiのHTTPサーバーを提供する。
//
// ユーザーごとのアプリ内通知（一覧、未読、既読化、削除）と、
// スイープの対象になるリマインダーの登録・完了・削除を扱う。
// すべての操作はJWTのuser_idに属するデータに限定される。
package notification
