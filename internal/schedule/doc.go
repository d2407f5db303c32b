// Package schedule は毎日決まった現地時刻に処理を起動するトリガーを提供する。
//
// 起動は1つのループで直列に行うため、前回の処理が終わるまで次回は始まらない。
package schedule
