package service

import "errors"

// 业务错误
var (
	ErrSelfRequest           = errors.New("cannot send connection request to yourself")
	ErrDuplicateRelationship = errors.New("connection request already exists or users already connected")
	ErrRequestNotFound       = errors.New("connection request not found")
	ErrNotRequestRecipient   = errors.New("only the recipient can respond to this request")
	ErrNotRequestSender      = errors.New("only the sender can cancel this request")
)
