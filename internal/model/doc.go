// Package model は車両管理アプリケーションのドメインモデルを定義する。
//
// リマインダー、アプリ内通知、ユーザーといった永続化対象のエンティティと、
// 期日計算に用いる暦日型を提供する。I/Oは一切行わない。
package model
