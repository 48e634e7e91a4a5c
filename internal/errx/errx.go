// Package errx 定义带分类的应用错误，处理器据此映射 HTTP 状态码。
package errx

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	Invalid      // 请求缺少必填字段或格式错误
	Validation   // 存储层模型校验失败
	Conflict     // 短码已被占用
	NotFound     // 短码不存在
	Expired      // 短码存在但已过期
	Unavailable  // 底层存储不可用或执行失败
	Internal
)

type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E 用操作名和分类包装错误，err 为 nil 时返回 nil
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Invalid:
		return "Invalid"
	case Validation:
		return "Validation"
	case Conflict:
		return "Conflict"
	case NotFound:
		return "NotFound"
	case Expired:
		return "Expired"
	case Unavailable:
		return "Unavailable"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf 返回错误链上最外层的分类
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is 判断 err 是否属于给定分类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message 返回最内层错误的文本，不包含操作名前缀
func Message(err error) string {
	for {
		var e *Error
		if !errors.As(err, &e) || e.Err == nil {
			break
		}
		err = e.Err
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
