// Package shuffle 提供可持久化的 "shuffle bag"：按 key 保存调用方序列的随机排列下标，
// 保证同一个序列在所有元素被抽完之前不会重复，并且抽取进度可以跨进程重启保存。
//
// 文件组织:
//
//	store.go       – Store 结构、构造函数与抽取逻辑
//	options.go     – 构造选项
//	random.go      – 随机源与洗牌
//	codec.go       – 状态的 JSON 编解码与校验
//	compression.go – 可选的 lz4/zstd 压缩封装
//	backend.go     – Backend 接口、文件后端与 Load/Save
//	errors.go      – 错误类型
//
// Store 不是并发安全的，多个 goroutine 共用时需要调用方在外部加锁。
package shuffle
