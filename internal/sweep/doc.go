// Package sweep はリマインダー通知の日次スイープを実装する。
//
// 1回のスイープは次の順に進む。
//
//  1. 未完了のリマインダーを読み込む
//  2. 各リマインダーが通知期間内かを判定する
//  3. 通知対象ごとにアプリ内通知とメールを組み立てる
//  4. メールを送信し（失敗は記録のみ）、最後にアプリ内通知を1回の原子的な書き込みで保存する
//
// 読み込みか保存に失敗した場合のみスイープ全体が失敗する。
// メールの送信失敗はReportに記録され、アプリ内通知には影響しない。
package sweep
