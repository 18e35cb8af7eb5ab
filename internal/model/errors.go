package model

import "errors"

// 错误分类（各组件用 %w 包装后向上传递，调用方用 errors.Is 判断）
var (
	// ErrNetwork 网络类错误：超时、非2xx状态码、响应体解析失败
	ErrNetwork = errors.New("network error")

	// ErrSerialization 序列化类错误：记录无法编码或解码
	ErrSerialization = errors.New("serialization error")

	// ErrIO 文件系统类错误：磁盘写满、权限不足等
	ErrIO = errors.New("io error")

	// ErrNotFound 查询未命中（非致命，调用方自行决定如何处理）
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument 调用方参数非法（如 k<=0、向量维度不匹配）
	ErrInvalidArgument = errors.New("invalid argument")
)
