package middleware

import "github.com/wyfcoding/optionpricing/xerrors"

var (
	// ErrRateLimited 单个客户端 IP 超出定价接口的令牌桶配额。
	ErrRateLimited = xerrors.New(xerrors.ErrLimitExceeded, 429001, "too many requests", "per-client pricing rate limit exceeded", nil)
	// ErrPanicRecovered 定价或渲染过程中发生 panic，已被 Recovery 拦截。
	ErrPanicRecovered = xerrors.New(xerrors.ErrInternal, 500001, "internal server error", "an unexpected error occurred", nil)
)
