package user

import "errors"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUsernameAlreadyExists はユーザー名重複時に返却されます。
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidUsername はユーザー名が不正な場合に返却されます。
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword はパスワードが不正な場合に返却されます。
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidRole はロールが不正な場合に返却されます。
	ErrInvalidRole = errors.New("invalid role")
	// ErrValueTooLong は列の長さを超える値が保存されようとした場合に返却されます。
	ErrValueTooLong = errors.New("value exceeds column length")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrInvalidPageToken = errors.New("invalid page token")
)
