package util

import "errors"

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrSurveyNotFound    = errors.New("survey not found")
	ErrResponseNotFound  = errors.New("response not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrInvalidInput      = errors.New("invalid survey or response collection")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrRatingOutOfRange  = errors.New("rating value out of range")
	ErrSurveyNotOwned    = errors.New("survey does not belong to current user")
)
