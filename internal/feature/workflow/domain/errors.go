// Package domain はworkflowフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrSessionNotFound はセッションが存在しないか期限切れの場合に返されます。
	ErrSessionNotFound = errors.New("session not found")
	// ErrRequestInFlight は同じ種類のリクエストが処理中の場合に返されます。
	ErrRequestInFlight = errors.New("a request is already in progress")
	// ErrInvalidTransition は現在のステップでは受け付けない操作の場合に返されます。
	ErrInvalidTransition = errors.New("operation is not allowed in the current step")
)
