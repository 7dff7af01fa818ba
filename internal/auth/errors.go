package auth

import "errors"

// 認証・登録まわりの回復可能なエラーです。ハンドラー側でユーザー向けの
// メッセージに変換し、スタックトレースを外に出さないこと。
var (
	ErrWeakCredential    = errors.New("password must be at least 6 characters")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrNoSuchUser        = errors.New("no such user")
	ErrBadPassword       = errors.New("bad password")
)
