package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrAIService 表示调用外部 AI 服务失败（超时、网络错误或响应不完整）。
	ErrAIService = errors.New("AI service error")
	// ErrInvalidAction 表示动作数据无法解码或缺少必填字段，只影响该条动作。
	ErrInvalidAction = errors.New("invalid action")

	ErrUserExists         = errors.New("用户名已存在")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSearchDisabled     = errors.New("journal search is not enabled")
)

// NotFoundError 表示目标实体不存在或不属于当前用户，两种情况对外不做区分。
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// IsNotFound 判断 err 是否为 NotFoundError 或 gorm.ErrRecordNotFound。
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) || errors.Is(err, gorm.ErrRecordNotFound)
}

func invalidAction(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
}
