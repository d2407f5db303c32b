package model

// User は認証基盤が管理するユーザープロファイルのうち、通知に必要な部分を表す。
type User struct {
	ID    string
	Email string
}
