// Package mail はトランザクションメールの送信手段を提供する。
//
// Brevo のHTTP API を使うBrevoSenderと、自前のSMTPサーバー向けのSMTPSenderがある。
// どちらも Sender インターフェースを満たし、送信失敗はエラーとして返す。
package mail
